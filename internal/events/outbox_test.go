package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec(`CREATE TABLE IF NOT EXISTS kit_events (
		id INTEGER PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}',
		dedupe_key TEXT UNIQUE,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func newTestOutbox(t *testing.T, db *gorm.DB) *Outbox {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return NewOutbox(db, node)
}

func TestOutboxPublishAndDrain(t *testing.T) {
	db := setupOutboxTestDB(t)
	outbox := newTestOutbox(t, db)
	ctx := context.Background()

	err := outbox.Publish(ctx, Event{
		Type:      EventLicenseClaimed,
		Payload:   map[string]any{"license_id": "1"},
		DedupeKey: "license_claimed:1",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	rows, err := outbox.FetchUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 1 || rows[0].EventType != EventLicenseClaimed {
		t.Fatalf("expected one claimed event, got %+v", rows)
	}

	if err := outbox.MarkPublished(ctx, rows[0].ID); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	rows, err = outbox.FetchUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("fetch after mark: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected drained outbox, got %+v", rows)
	}
}

func TestOutboxDedupeKeyDropsRedelivery(t *testing.T) {
	db := setupOutboxTestDB(t)
	outbox := newTestOutbox(t, db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := outbox.Publish(ctx, Event{
			Type:      EventLicenseClaimed,
			Payload:   map[string]any{"license_id": "1"},
			DedupeKey: "license_claimed:1",
		})
		if err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	rows, err := outbox.FetchUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected duplicate dropped, got %d rows", len(rows))
	}
}

func TestOutboxRejectsEmptyEventType(t *testing.T) {
	db := setupOutboxTestDB(t)
	outbox := newTestOutbox(t, db)

	if err := outbox.Publish(context.Background(), Event{Type: "  "}); err == nil {
		t.Fatalf("expected error for blank event type")
	}
}

func TestOutboxPublishTxRollsBackWithTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	outbox := newTestOutbox(t, db)
	ctx := context.Background()

	rollback := fmt.Errorf("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := outbox.PublishTx(ctx, tx, Event{Type: EventLicenseClaimed}); err != nil {
			t.Fatalf("publish tx: %v", err)
		}
		return rollback
	})
	if err != rollback {
		t.Fatalf("expected rollback error, got %v", err)
	}

	rows, err := outbox.FetchUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected rolled-back event to vanish, got %+v", rows)
	}
}
