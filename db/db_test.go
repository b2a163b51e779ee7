// ABOUTME: Unit tests for database layer
// ABOUTME: Tests schema creation, preference persistence, and snapshot round trips
package db

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/bellhop/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return database
}

func TestSchemaCreatesTables(t *testing.T) {
	database := openTestDB(t)

	for _, table := range []string{"preferences", "snapshot"} {
		var name string
		err := database.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestSoundPreferenceDefaultsTrue(t *testing.T) {
	database := openTestDB(t)

	enabled, err := GetSoundEnabled(database)
	if err != nil {
		t.Fatalf("GetSoundEnabled failed: %v", err)
	}
	if !enabled {
		t.Error("expected sound to default to enabled")
	}
}

func TestSoundPreferenceRoundTrip(t *testing.T) {
	database := openTestDB(t)

	if err := SetSoundEnabled(database, false); err != nil {
		t.Fatalf("SetSoundEnabled failed: %v", err)
	}
	enabled, err := GetSoundEnabled(database)
	if err != nil {
		t.Fatalf("GetSoundEnabled failed: %v", err)
	}
	if enabled {
		t.Error("expected sound disabled after toggle")
	}

	// Toggle back, exercising the upsert path.
	if err := SetSoundEnabled(database, true); err != nil {
		t.Fatalf("SetSoundEnabled failed: %v", err)
	}
	enabled, _ = GetSoundEnabled(database)
	if !enabled {
		t.Error("expected sound enabled after second toggle")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	database := openTestDB(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []models.Notification{
		{
			ID:        "a",
			Type:      models.TypeLeadAssigned,
			Title:     "New lead",
			Message:   "Acme Corp wants a quote",
			Priority:  models.PriorityUrgent,
			CreatedAt: created,
			Action:    &models.Action{URL: "/admin/leads/42", Label: "View lead"},
			Metadata:  map[string]string{models.MetaEntityID: "42"},
		},
		{
			ID:        "b",
			Type:      models.TypeReminder,
			Title:     "Standup",
			Message:   "Daily standup in 10 minutes",
			Priority:  models.PriorityNormal,
			Read:      true,
			CreatedAt: created.Add(-time.Hour),
		},
	}

	if err := SaveSnapshot(database, items); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := LoadSnapshot(database)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded))
	}

	// Newest first.
	if loaded[0].ID != "a" || loaded[1].ID != "b" {
		t.Errorf("expected [a b], got [%s %s]", loaded[0].ID, loaded[1].ID)
	}

	a := loaded[0]
	if a.Action == nil || a.Action.URL != "/admin/leads/42" || a.Action.Label != "View lead" {
		t.Errorf("action not restored: %+v", a.Action)
	}
	if a.Metadata[models.MetaEntityID] != "42" {
		t.Errorf("metadata not restored: %+v", a.Metadata)
	}
	if !loaded[1].Read {
		t.Error("read flag not restored")
	}
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	database := openTestDB(t)

	first := []models.Notification{{ID: "old", Type: models.TypeTask, Title: "t", Message: "m", Priority: models.PriorityNormal, CreatedAt: time.Now()}}
	second := []models.Notification{{ID: "new", Type: models.TypeTask, Title: "t", Message: "m", Priority: models.PriorityNormal, CreatedAt: time.Now()}}

	if err := SaveSnapshot(database, first); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := SaveSnapshot(database, second); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := LoadSnapshot(database)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "new" {
		t.Errorf("expected only the new snapshot, got %+v", loaded)
	}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	database := openTestDB(t)

	loaded, err := LoadSnapshot(database)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty snapshot, got %d items", len(loaded))
	}
}
