package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef records which scope produced an event and through which
// entry point, for tracing a payload back to its origin.
type ActorRef struct {
	UserScope string `json:"userScope"`
	Source    string `json:"source,omitempty"`
}

// PayloadEnvelope is the stable JSON stored in outbox_events.payload and
// shipped on the wire. Version gates the decoder on the consumer side.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
