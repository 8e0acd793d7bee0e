package route

import (
	"sync"

	"go.uber.org/zap"
)

// FragmentBinding abstracts the URL fragment the navigator reads and
// rewrites. The production binding wraps the shell's location bar; tests
// supply an in-memory one.
type FragmentBinding interface {
	Fragment() string
	SetFragment(fragment string)
}

// Navigator owns the live routing state. It re-evaluates the reducer at
// exactly two moments: once when session presence flips, and on every
// user/navigation-driven fragment change. Fragment churn with unchanged
// presence and no navigation input is never re-evaluated.
type Navigator struct {
	mu      sync.Mutex
	binding FragmentBinding
	log     *zap.Logger

	sessionPresent bool
	screen         ScreenID
}

// NewNavigator starts on the login screen with no session.
func NewNavigator(binding FragmentBinding, log *zap.Logger) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Navigator{
		binding: binding,
		log:     log,
		screen:  ScreenLogin,
	}
}

// Screen returns the currently selected screen.
func (n *Navigator) Screen() ScreenID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.screen
}

// SessionChanged informs the navigator of the current session presence. The
// reducer runs exactly once per presence transition; a repeated call with
// unchanged presence is a no-op and returns the current screen.
func (n *Navigator) SessionChanged(present bool) ScreenID {
	n.mu.Lock()
	defer n.mu.Unlock()
	if present == n.sessionPresent {
		return n.screen
	}
	n.sessionPresent = present
	return n.evaluateLocked(n.binding.Fragment())
}

// FragmentChanged handles a user- or navigation-driven fragment change.
// These are always re-evaluated.
func (n *Navigator) FragmentChanged(fragment string) ScreenID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.evaluateLocked(fragment)
}

func (n *Navigator) evaluateLocked(fragment string) ScreenID {
	decision := Route(n.sessionPresent, fragment)
	if decision.Rewritten {
		n.log.Debug("fragment normalized",
			zap.String("from", fragment),
			zap.String("to", decision.Fragment))
		n.binding.SetFragment(decision.Fragment)
	}
	n.screen = decision.Screen
	return n.screen
}
