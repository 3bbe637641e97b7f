package router

import (
	"context"
	"fmt"

	"github.com/ledgerline/ledgerline-backend/internal/analytics/types"
	analyticswriter "github.com/ledgerline/ledgerline-backend/internal/analytics/writer"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
	outboxpayloads "github.com/ledgerline/ledgerline-backend/pkg/outbox/payloads"
)

type snapshotWrittenHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newSnapshotWrittenHandler(writer Writer, logg *logger.Logger) Handler {
	return &snapshotWrittenHandler{writer: writer, logg: logg}
}

func (h *snapshotWrittenHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.NetWorthSnapshotWrittenEvent)
	if !ok {
		return fmt.Errorf("invalid payload for net_worth_snapshot_written")
	}

	fields := map[string]any{
		"event_type":    envelope.EventType,
		"snapshot_id":   event.SnapshotID,
		"user_scope":    event.UserScope,
		"snapshot_date": event.SnapshotDate.String(),
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildSnapshotWrittenRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build snapshot event row", err)
		return err
	}

	if err := h.writer.InsertSnapshotEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert snapshot event row", err)
		return err
	}

	h.logg.Info(logCtx, "net_worth_snapshot_written handler inserted row")
	return nil
}

func buildSnapshotWrittenRow(envelope types.Envelope, event *outboxpayloads.NetWorthSnapshotWrittenEvent) (types.SnapshotEventRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(event)
	if err != nil {
		return types.SnapshotEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	return types.SnapshotEventRow{
		EventID:      envelope.EventID,
		EventType:    string(envelope.EventType),
		OccurredAt:   envelope.OccurredAt,
		SnapshotID:   event.SnapshotID.String(),
		UserScope:    event.UserScope,
		SnapshotDate: event.SnapshotDate.String(),
		Cash:         event.Cash.InexactFloat64(),
		Investments:  event.Investments.InexactFloat64(),
		RealEstate:   event.RealEstate.InexactFloat64(),
		Crypto:       event.Crypto.InexactFloat64(),
		Retirement:   event.Retirement.InexactFloat64(),
		Liabilities:  event.Liabilities.InexactFloat64(),
		TotalAssets:  event.TotalAssets.InexactFloat64(),
		NetWorth:     event.NetWorth.InexactFloat64(),
		Payload:      payloadJSON,
	}, nil
}
