package router

import (
	"context"
	"fmt"

	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	analyticswriter "github.com/ledgerline/ledgerline-backend/internal/analytics/writer"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	outboxpayloads "github.com/ledgerline/ledgerline-backend/pkg/outbox/payloads"
)

type importCompletedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newImportCompletedHandler(writer Writer, logg *logger.Logger) Handler {
	return &importCompletedHandler{writer: writer, logg: logg}
}

func (h *importCompletedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.ImportCompletedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for import_completed")
	}

	fields := map[string]any{
		"event_type": envelope.EventType,
		"batch_id":   event.BatchID,
		"user_scope": event.UserScope,
		"imported":   event.Imported,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildImportCompletedRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build import event row", err)
		return err
	}

	if err := h.writer.InsertImportEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert import event row", err)
		return err
	}

	h.logg.Info(logCtx, "import_completed handler inserted row")
	return nil
}

func buildImportCompletedRow(envelope types.Envelope, event *outboxpayloads.ImportCompletedEvent) (types.ImportEventRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.ImportEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	return types.ImportEventRow{
		EventID:               envelope.EventID,
		EventType:             string(envelope.EventType),
		OccurredAt:            envelope.OccurredAt,
		BatchID:               event.BatchID.String(),
		UserScope:             event.UserScope,
		Filename:              event.Filename,
		SourceSchema:          string(event.SourceSchema),
		Imported:              int64(event.Imported),
		SkippedRows:           int64(event.SkippedRows),
		DuplicatesSkipped:     int64(event.DuplicatesSkipped),
		IgnoredAccountRecords: int64(event.IgnoredAccountRecords),
		HoldingsImported:      int64(event.HoldingsImported),
		PotentialDuplicates:   int64(event.PotentialDuplicates),
		Payload:               payloadJSON,
	}, nil
}
