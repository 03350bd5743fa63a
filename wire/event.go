package wire

// Event is a single named event. Data is caller-serialized text; the codec
// never inspects or re-encodes it. ID is the optional resume marker attached
// by the producer.
type Event struct {
	Type string `json:"type"`
	Data string `json:"data"`
	ID   string `json:"id,omitempty"`
}

// Synthetic protocol event types emitted by the engine itself.
// Domain event types belong to the application.
const (
	// EventTypeStreamOpen is written once per accepted subscription,
	// before any domain event, in both delivery modes.
	EventTypeStreamOpen = "stream-open"

	// EventTypeKeepAlive is the periodic heartbeat frame. In proxy mode it
	// is handed to the proxy as the hold's keep-alive payload; in direct
	// mode it is written by the handler itself.
	EventTypeKeepAlive = "keep-alive"
)

// StreamOpen returns the synthetic handshake event.
func StreamOpen() Event {
	return Event{Type: EventTypeStreamOpen, Data: ""}
}

// KeepAlive returns the synthetic heartbeat event.
func KeepAlive() Event {
	return Event{Type: EventTypeKeepAlive, Data: ""}
}
