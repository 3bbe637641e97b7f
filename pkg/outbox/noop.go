package outbox

import (
	"context"

	"gorm.io/gorm"
)

// Emitter records a domain event in the caller's transaction, so the
// event commits or rolls back together with the state change it
// announces.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error
}

// NoopEmitter discards events. It stands in for the real emitter when
// eventing is turned off.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(context.Context, *gorm.DB, DomainEvent) error {
	return nil
}
