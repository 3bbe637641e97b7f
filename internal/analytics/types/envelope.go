package types

import (
	"encoding/json"
	"time"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// Envelope is the normalized form of one analytics message, produced by the
// worker from the stored payload envelope plus the Pub/Sub attributes.
// Version selects the payload decoder; an unset version means v1.
type Envelope struct {
	EventID       string                    `json:"event_id"`
	EventType     enums.AnalyticsEventType  `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   string                    `json:"aggregate_id"`
	OccurredAt    time.Time                 `json:"occurred_at"`
	Version       int                       `json:"version"`
	Payload       json.RawMessage           `json:"payload"`
}
