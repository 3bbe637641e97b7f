package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	outboxpayloads "github.com/ledgerline/ledgerline-backend/pkg/outbox/payloads"
	"github.com/ledgerline/ledgerline-backend/pkg/outbox/registry"
)

var ErrUnsupportedEventType = errors.New("unsupported analytics event type")

// Writer delivers BigQuery rows produced by analytics handlers.
type Writer interface {
	InsertImportEvent(ctx context.Context, row types.ImportEventRow) error
	InsertSnapshotEvent(ctx context.Context, row types.SnapshotEventRow) error
}

// Handler receives an envelope plus a decoded event payload.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope, payload any) error
}

// Router dispatches analytics envelopes to the handler for their event type.
// Payloads decode through a versioned registry keyed by the envelope version.
type Router struct {
	handlers map[enums.AnalyticsEventType]Handler
	decoders *registry.DecoderRegistry
	logg     *logger.Logger
}

// NewRouter wires the default handlers and allows overrides for specific events.
func NewRouter(writer Writer, logg *logger.Logger, overrides map[enums.AnalyticsEventType]Handler) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	handlers := map[enums.AnalyticsEventType]Handler{
		enums.AnalyticsEventImportCompleted:         newImportCompletedHandler(writer, logg),
		enums.AnalyticsEventImportFailed:            newImportFailedHandler(writer, logg),
		enums.AnalyticsEventNetWorthSnapshotWritten: newSnapshotWrittenHandler(writer, logg),
	}
	for event, custom := range overrides {
		if _, ok := handlers[event]; !ok || custom == nil {
			continue
		}
		handlers[event] = custom
	}

	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.AnalyticsEventImportCompleted, 1,
		jsonDecoder(func() any { return &outboxpayloads.ImportCompletedEvent{} }))
	decoders.Register(enums.AnalyticsEventImportFailed, 1,
		jsonDecoder(func() any { return &outboxpayloads.ImportFailedEvent{} }))
	decoders.Register(enums.AnalyticsEventNetWorthSnapshotWritten, 1,
		jsonDecoder(func() any { return &outboxpayloads.NetWorthSnapshotWrittenEvent{} }))

	return &Router{
		handlers: handlers,
		decoders: decoders,
		logg:     logg,
	}, nil
}

// Handle decodes the envelope payload and dispatches it to the handler for
// its event type.
func (r *Router) Handle(ctx context.Context, envelope types.Envelope) error {
	handler, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("empty payload for %s", envelope.EventType)
	}

	// An unset version means the v1 envelope.
	version := envelope.Version
	if version <= 0 {
		version = 1
	}
	payload, err := r.decoders.Decode(envelope.EventType, version, envelope.Payload)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}

	return handler.Handle(ctx, envelope, payload)
}

func jsonDecoder(factory func() any) registry.DecoderFunc {
	return func(payload json.RawMessage) (any, error) {
		out := factory()
		if err := json.Unmarshal(payload, out); err != nil {
			return nil, err
		}
		return out, nil
	}
}
