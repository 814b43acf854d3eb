package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionViolation Action = "violation"
	ActionPing      Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ViolationRequest is sent by the proctoring client to report one event.
type ViolationRequest struct {
	Action     Action   `json:"action"`
	Type       string   `json:"type"`
	Screenshot *string  `json:"screenshot,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventRecorded Event = "recorded"
	EventPong     Event = "pong"
)

// RecordedResponse acknowledges a violation with the updated counters.
type RecordedResponse struct {
	Event          Event  `json:"event"`
	ViolationCount int    `json:"violation_count"`
	TrustScore     int    `json:"trust_score"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
