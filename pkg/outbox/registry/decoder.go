package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// DecoderFunc turns a raw envelope payload into its typed event struct.
type DecoderFunc func(payload json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.AnalyticsEventType
	version   int
}

// DecoderRegistry holds the versioned payload decoders a consumer accepts.
// The envelope version picks the decoder, so a payload shape can evolve
// without breaking readers of the earlier shape.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	decoders map[decoderKey]DecoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]DecoderFunc)}
}

// Register stores the decoder for one event type and payload version.
// Nil decoders are ignored.
func (r *DecoderRegistry) Register(eventType enums.AnalyticsEventType, version int, decoder DecoderFunc) {
	if decoder == nil {
		return
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Decode runs the decoder registered for the event type and version.
func (r *DecoderRegistry) Decode(eventType enums.AnalyticsEventType, version int, payload json.RawMessage) (any, error) {
	r.mtx.RLock()
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no decoder for %s@v%d", eventType, version)
	}
	return decoder(payload)
}
