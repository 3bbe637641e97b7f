package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	// The shared-cache DB survives across tests in this package.
	require.NoError(t, db.Exec("DELETE FROM outbox_events").Error)
	return db
}

func seedEvent(t *testing.T, db *gorm.DB, age time.Duration, published bool, attempts int) models.OutboxEvent {
	t.Helper()

	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventImportCompleted,
		AggregateType: enums.AggregateImportBatch,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		AttemptCount:  attempts,
	}
	require.NoError(t, db.Create(&event).Error)
	updates := map[string]any{"created_at": time.Now().UTC().Add(-age)}
	if published {
		updates["published_at"] = time.Now().UTC().Add(-age)
	}
	require.NoError(t, db.Model(&event).Updates(updates).Error)
	return event
}

func TestRepositoryInsertRequiresTx(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	err := repo.Insert(nil, models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventImportCompleted,
		AggregateType: enums.AggregateImportBatch,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	})
	assert.Error(t, err)

	event := seedEvent(t, db, 0, false, 0)
	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, "id = ?", event.ID).Error)
	assert.Equal(t, event.AggregateID, reloaded.AggregateID)
}

func TestRepositoryFetchUnpublishedForPublishSkipsExhausted(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	fresh := seedEvent(t, db, time.Minute, false, 0)
	retried := seedEvent(t, db, time.Minute, false, 3)
	seedEvent(t, db, time.Minute, false, 5)
	seedEvent(t, db, time.Minute, true, 0)

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	got := map[uuid.UUID]bool{}
	for _, row := range rows {
		got[row.ID] = true
	}
	assert.True(t, got[fresh.ID])
	assert.True(t, got[retried.ID])
}

func TestRepositoryMarkLifecycle(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := seedEvent(t, db, 0, false, 0)
	require.NoError(t, repo.MarkFailedTx(db, event.ID, errors.New("publish timeout")))

	var reloaded models.OutboxEvent
	require.NoError(t, db.First(&reloaded, "id = ?", event.ID).Error)
	assert.Equal(t, 1, reloaded.AttemptCount)
	require.NotNil(t, reloaded.LastError)
	assert.Equal(t, "publish timeout", *reloaded.LastError)
	assert.Nil(t, reloaded.PublishedAt)

	require.NoError(t, repo.MarkTerminalTx(db, event.ID, errors.New("bad payload"), 5))
	require.NoError(t, db.First(&reloaded, "id = ?", event.ID).Error)
	assert.Equal(t, 5, reloaded.AttemptCount)

	other := seedEvent(t, db, 0, false, 0)
	require.NoError(t, repo.MarkPublishedTx(db, other.ID))
	require.NoError(t, db.First(&reloaded, "id = ?", other.ID).Error)
	assert.NotNil(t, reloaded.PublishedAt)
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	oldPublished := seedEvent(t, db, 60*24*time.Hour, true, 1)
	oldTerminal := seedEvent(t, db, 60*24*time.Hour, false, 5)
	oldPending := seedEvent(t, db, 60*24*time.Hour, false, 2)
	recentPublished := seedEvent(t, db, time.Hour, true, 1)

	deleted, err := repo.DeletePublishedBefore(context.Background(), nil, time.Now().UTC().Add(-30*24*time.Hour), 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var remaining []models.OutboxEvent
	require.NoError(t, db.Find(&remaining, "id IN ?", []uuid.UUID{
		oldPublished.ID, oldTerminal.ID, oldPending.ID, recentPublished.ID,
	}).Error)
	require.Len(t, remaining, 2)
	ids := map[uuid.UUID]bool{}
	for _, row := range remaining {
		ids[row.ID] = true
	}
	// a row still awaiting publish attempts is never reaped
	assert.True(t, ids[oldPending.ID])
	assert.True(t, ids[recentPublished.ID])
}
