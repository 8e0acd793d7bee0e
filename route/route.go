// Package route derives the active screen from session presence and the URL
// fragment.
//
// The reducer is a pure function: it never touches session state or the URL
// itself. [Navigator] wraps it with the live fragment binding and the
// re-evaluation rules around session transitions.
package route

// ScreenID names one top-level screen. RouteState is derived, never
// persisted independently of the URL fragment.
type ScreenID string

const (
	// ScreenLogin is the only screen reachable without a session.
	ScreenLogin ScreenID = "login"
	// ScreenAgentMenu is the designated default signed-in screen.
	ScreenAgentMenu ScreenID = "agentMenu"
	// ScreenCheckout is the equipment check-out flow.
	ScreenCheckout ScreenID = "checkout"
	// ScreenCheckin is the equipment check-in flow.
	ScreenCheckin ScreenID = "checkin"
	// ScreenEquipment is the equipment registry list.
	ScreenEquipment ScreenID = "equipment"
	// ScreenReportIssue is the issue-reporting form.
	ScreenReportIssue ScreenID = "reportIssue"
	// ScreenHistory is the per-equipment history log.
	ScreenHistory ScreenID = "history"
	// ScreenAdmin is the admin dashboard.
	ScreenAdmin ScreenID = "admin"
)

// DefaultScreen is where an empty or invalid fragment lands when a session
// is present.
const DefaultScreen = ScreenAgentMenu

var signedInScreens = map[ScreenID]struct{}{
	ScreenAgentMenu:   {},
	ScreenCheckout:    {},
	ScreenCheckin:     {},
	ScreenEquipment:   {},
	ScreenReportIssue: {},
	ScreenHistory:     {},
	ScreenAdmin:       {},
}

// ValidSignedIn reports whether fragment names a member of the signed-in
// screen set.
func ValidSignedIn(fragment string) bool {
	_, ok := signedInScreens[ScreenID(fragment)]
	return ok
}

// Decision is the outcome of one routing evaluation.
type Decision struct {
	Screen ScreenID
	// Fragment is the fragment the URL should carry after this decision.
	Fragment string
	// Rewritten is true when Fragment differs from the input, i.e. the
	// one-way normalization onto the default screen fired.
	Rewritten bool
}

// Route reduces (session presence, fragment) to the active screen.
//
// No session: always the login screen; the fragment is preserved untouched
// so a deep link survives the sign-in round trip. With a session: an empty
// or invalid fragment normalizes to [DefaultScreen]; a valid fragment is
// honored verbatim and never overridden.
func Route(sessionPresent bool, fragment string) Decision {
	if !sessionPresent {
		return Decision{Screen: ScreenLogin, Fragment: fragment}
	}
	if ValidSignedIn(fragment) {
		return Decision{Screen: ScreenID(fragment), Fragment: fragment}
	}
	return Decision{
		Screen:    DefaultScreen,
		Fragment:  string(DefaultScreen),
		Rewritten: true,
	}
}
