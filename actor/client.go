// Package actor is the write-path client for the actor-function service
// backing the equipment registry.
//
// Every mutation runs the session validation gate before any bytes leave the
// terminal; the caller supplies the owner identifier, and the client passes
// it through as the gate's expected-subject hint without interpreting it.
// The server remains the authority on ownership and authorization - a 401 or
// 403 coming back is still handled even though the gate let the request out.
package actor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	goKiosk "github.com/ramptrack/goKiosk"
)

const defaultRequestTimeout = 15 * time.Second

// Gate is the pre-flight check consulted before every mutation. Satisfied by
// [goKiosk.Engine].
type Gate interface {
	EnsureValid(ctx context.Context, expectedSubjectID string) bool
}

// Client posts JSON commands to the actor service. Safe for concurrent use.
type Client struct {
	base     string
	http     *http.Client
	gate     Gate
	log      *zap.Logger
	onFlight func(bool)

	flightMu sync.Mutex
	inFlight int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the structured logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithInFlightSignal registers the request-in-flight signal consumer,
// typically [overlay.Notifier.SetRequestInFlight]. It is called with true
// when the first concurrent request starts and false when the last one
// finishes.
func WithInFlightSignal(fn func(bool)) Option {
	return func(c *Client) { c.onFlight = fn }
}

// NewClient creates a write-path client rooted at baseURL.
func NewClient(baseURL string, gate Gate, opts ...Option) *Client {
	c := &Client{
		base: baseURL,
		http: &http.Client{Timeout: defaultRequestTimeout},
		gate: gate,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckOutRequest records a piece of equipment leaving with an owner.
type CheckOutRequest struct {
	EquipmentID string `json:"equipmentId"`
	OwnerBadge  string `json:"ownerBadge"`
	GateCode    string `json:"gateCode,omitempty"`
}

// CheckInRequest returns a piece of equipment.
type CheckInRequest struct {
	EquipmentID string `json:"equipmentId"`
	OwnerBadge  string `json:"ownerBadge"`
	Condition   string `json:"condition,omitempty"`
}

// ReportIssueRequest files an issue against a piece of equipment.
type ReportIssueRequest struct {
	EquipmentID string `json:"equipmentId"`
	OwnerBadge  string `json:"ownerBadge"`
	Description string `json:"description"`
}

// CheckOut submits an equipment check-out.
func (c *Client) CheckOut(ctx context.Context, req CheckOutRequest) error {
	return c.mutate(ctx, "checkout", req.OwnerBadge, req)
}

// CheckIn submits an equipment check-in.
func (c *Client) CheckIn(ctx context.Context, req CheckInRequest) error {
	return c.mutate(ctx, "checkin", req.OwnerBadge, req)
}

// ReportIssue submits an issue report.
func (c *Client) ReportIssue(ctx context.Context, req ReportIssueRequest) error {
	return c.mutate(ctx, "reportIssue", req.OwnerBadge, req)
}

func (c *Client) mutate(ctx context.Context, command, ownerBadge string, payload any) error {
	if !c.gate.EnsureValid(ctx, ownerBadge) {
		return goKiosk.ErrSessionRequired
	}

	c.markFlight(1)
	defer c.markFlight(-1)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("actor: encode %s: %w", command, err)
	}

	url := c.base + "/api/commands/" + command
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("actor: build %s request: %w", command, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("actor service unreachable", zap.String("command", command), zap.Error(err))
		return fmt.Errorf("actor: %s: %w: %w", command, goKiosk.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("actor: %s: %w", command, goKiosk.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("actor: %s: %w", command, goKiosk.ErrForbidden)
	case resp.StatusCode >= 500:
		return fmt.Errorf("actor: %s: %w: status %d", command, goKiosk.ErrBackendUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("actor: %s: unexpected status %d", command, resp.StatusCode)
	}
}

// markFlight maintains the in-flight counter and fires the edge transitions
// of the combined signal.
func (c *Client) markFlight(delta int) {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()
	before := c.inFlight
	c.inFlight += delta
	after := c.inFlight

	// The callback runs under the counter lock so raise/clear edges are
	// delivered in order. It must not call back into this client.
	if c.onFlight == nil {
		return
	}
	if before == 0 && after > 0 {
		c.onFlight(true)
	}
	if before > 0 && after == 0 {
		c.onFlight(false)
	}
}
