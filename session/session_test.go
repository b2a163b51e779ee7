// ABOUTME: Unit tests for session lifecycle
// ABOUTME: Tests snapshot warm start, teardown persistence, and load-more dedup
package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/bellhop/db"
	"github.com/harperreed/bellhop/models"
	"github.com/harperreed/bellhop/remote"
)

type fakeAPI struct {
	pages map[int][]models.Notification
	total int
	calls int
}

func (f *fakeAPI) List(ctx context.Context, opts remote.ListOptions) (remote.ListResult, error) {
	f.calls++
	return remote.ListResult{
		Data:       f.pages[opts.Page],
		Pagination: remote.Pagination{Total: f.total, Page: opts.Page, Limit: opts.Limit},
	}, nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, id, requestKey string) error { return nil }

func (f *fakeAPI) MarkAllRead(ctx context.Context, requestKey string) ([]string, error) {
	return nil, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id, requestKey string) error { return nil }

func testConfig() *remote.Config {
	return &remote.Config{
		ServerURL:    "http://localhost",
		DeviceID:     "dev",
		PollInterval: time.Hour,
		WindowSize:   15,
		PageSize:     2,
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := db.InitSchema(database); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return database
}

func TestSessionWarmStartsFromSnapshot(t *testing.T) {
	database := openTestDB(t)
	cached := []models.Notification{
		{ID: "cached", Type: models.TypeTask, Title: "t", Message: "m", Priority: models.PriorityNormal, CreatedAt: time.Now()},
	}
	if err := db.SaveSnapshot(database, cached); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	sess, err := New(testConfig(), database, &fakeAPI{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if len(sess.Store.Items()) != 1 {
		t.Error("expected store seeded from snapshot before any poll")
	}
}

func TestClosePersistsSnapshotAndSound(t *testing.T) {
	database := openTestDB(t)
	sess, err := New(testConfig(), database, &fakeAPI{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sess.Store.ReplaceWindow([]models.Notification{
		{ID: "a", Type: models.TypeTask, Title: "t", Message: "m", Priority: models.PriorityNormal, CreatedAt: time.Now()},
	})
	sess.Store.SetSoundEnabled(false)

	if err := sess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	snapshot, err := db.LoadSnapshot(database)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != "a" {
		t.Errorf("expected snapshot persisted on teardown, got %+v", snapshot)
	}

	enabled, _ := db.GetSoundEnabled(database)
	if enabled {
		t.Error("expected sound preference persisted on teardown")
	}
}

func TestToggleSoundPersistsImmediately(t *testing.T) {
	database := openTestDB(t)
	sess, err := New(testConfig(), database, &fakeAPI{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	enabled, err := sess.ToggleSound()
	if err != nil {
		t.Fatalf("ToggleSound failed: %v", err)
	}
	if enabled {
		t.Error("expected toggle from default-on to off")
	}

	persisted, _ := db.GetSoundEnabled(database)
	if persisted {
		t.Error("expected toggle written through to the database")
	}
}

func TestLoadMoreAppendsDeduplicated(t *testing.T) {
	database := openTestDB(t)
	now := time.Now()
	api := &fakeAPI{
		total: 4,
		pages: map[int][]models.Notification{
			2: {
				{ID: "a", Type: models.TypeTask, CreatedAt: now}, // already held
				{ID: "older", Type: models.TypeTask, CreatedAt: now.Add(-2 * time.Hour)},
			},
		},
	}

	sess, err := New(testConfig(), database, api, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sess.Store.ReplaceWindow([]models.Notification{{ID: "a", Type: models.TypeTask, CreatedAt: now}})

	added, total, err := sess.LoadMore(context.Background(), 2)
	if err != nil {
		t.Fatalf("LoadMore failed: %v", err)
	}
	if added != 1 {
		t.Errorf("expected 1 new record, got %d", added)
	}
	if total != 4 {
		t.Errorf("expected server total 4, got %d", total)
	}
	if len(sess.Store.Items()) != 2 {
		t.Errorf("expected 2 items after load-more, got %d", len(sess.Store.Items()))
	}
}

func TestResolveUsesViewerClass(t *testing.T) {
	database := openTestDB(t)
	cfg := testConfig()
	cfg.Privileged = true

	sess, err := New(cfg, database, &fakeAPI{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sess.Store.ReplaceWindow([]models.Notification{{
		ID:        "n1",
		Type:      models.TypeLeadAssigned,
		CreatedAt: time.Now(),
		Metadata:  map[string]string{models.MetaEntityID: "42"},
	}})

	path, err := sess.Resolve("n1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if path != "/admin/leads/42" {
		t.Errorf("expected privileged route, got %s", path)
	}
}

func TestStartTriggersImmediatePoll(t *testing.T) {
	database := openTestDB(t)
	api := &fakeAPI{pages: map[int][]models.Notification{
		1: {{ID: "polled", Type: models.TypeTask, CreatedAt: time.Now()}},
	}}

	sess, err := New(testConfig(), database, api, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sess.Start(context.Background())
	defer func() { _ = sess.Close() }()

	deadline := time.After(time.Second)
	for {
		if len(sess.Store.Items()) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected immediate poll to populate the store")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
