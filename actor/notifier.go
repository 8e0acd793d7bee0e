package actor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goKiosk "github.com/ramptrack/goKiosk"
)

// Notifier posts the advisory login notification to the actor service. It
// implements [goKiosk.LoginNotifier]; the engine already bounds the call
// with its own context, so the embedded HTTP client carries no timeout of
// its own beyond a sane ceiling.
type Notifier struct {
	base string
	http *http.Client
}

// NewNotifier creates a login notifier rooted at baseURL.
func NewNotifier(baseURL string) *Notifier {
	return &Notifier{
		base: baseURL,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type loginNotice struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
	BadgeID string `json:"badgeId,omitempty"`
}

// NotifyLogin implements [goKiosk.LoginNotifier].
func (n *Notifier) NotifyLogin(ctx context.Context, session goKiosk.Session) error {
	body, err := json.Marshal(loginNotice{
		Subject: session.Subject,
		Role:    session.Role.String(),
		BadgeID: session.BadgeID,
	})
	if err != nil {
		return fmt.Errorf("actor: encode login notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.base+"/api/events/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("actor: build login notice: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("actor: login notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("actor: login notice: status %d", resp.StatusCode)
	}
	return nil
}
