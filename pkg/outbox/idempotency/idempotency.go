// Package idempotency guards event consumers against Pub/Sub redeliveries.
// Processed event ids live in Redis under
// `ll:idempotency:evt:processed:<consumer>:<event_id>` with a TTL, so the
// guard forgets an event once redeliveries can no longer occur.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline-backend/pkg/redis"
)

const processedScope = "evt:processed"

// Manager marks events processed per consumer name, so two consumers can
// each handle the same event once.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed marks the event processed for the consumer and
// reports whether it was marked already. The mark is a single SETNX, so two
// racing deliveries cannot both observe false.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, fmt.Errorf("mark processed: %w", err)
	}
	return !set, nil
}

// Delete drops the processed mark. Consumers call it after a handler error
// so the redelivery runs the handler again instead of being skipped.
func (m *Manager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(consumer string, eventID uuid.UUID) (string, error) {
	switch {
	case consumer == "":
		return "", errors.New("consumer name is required")
	case eventID == uuid.Nil:
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey(processedScope+":"+consumer, eventID.String()), nil
}
