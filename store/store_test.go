// ABOUTME: Unit tests for the sync store
// ABOUTME: Tests merge idempotence, grace-period reconciliation, counters, and rollback
package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/harperreed/bellhop/models"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func note(id string, read bool, priority string, age time.Duration) models.Notification {
	return models.Notification{
		ID:        id,
		Type:      models.TypeReminder,
		Title:     "title " + id,
		Message:   "message " + id,
		Priority:  priority,
		Read:      read,
		CreatedAt: testBase.Add(-age),
	}
}

// testClock is an adjustable clock for driving the grace period.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore() (*Store, *testClock) {
	clock := &testClock{now: testBase}
	return NewStoreWithClock(false, clock.Now), clock
}

func TestReplaceWindowIsIdempotent(t *testing.T) {
	s, _ := newTestStore()
	window := []models.Notification{
		note("a", false, models.PriorityUrgent, 0),
		note("b", true, models.PriorityNormal, time.Hour),
	}

	s.ReplaceWindow(window)
	first := s.Items()
	firstUnread, firstUrgent := s.Counters()

	s.ReplaceWindow(window)
	second := s.Items()
	secondUnread, secondUrgent := s.Counters()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated merge changed items:\n%+v\nvs\n%+v", first, second)
	}
	if firstUnread != secondUnread || firstUrgent != secondUrgent {
		t.Errorf("repeated merge changed counters: (%d,%d) vs (%d,%d)",
			firstUnread, firstUrgent, secondUnread, secondUrgent)
	}
}

func TestReplaceWindowSortsAndRemovesAbsent(t *testing.T) {
	s, _ := newTestStore()
	s.ReplaceWindow([]models.Notification{
		note("old", false, models.PriorityNormal, 2*time.Hour),
		note("gone", false, models.PriorityNormal, 3*time.Hour),
	})

	s.ReplaceWindow([]models.Notification{
		note("old", false, models.PriorityNormal, 2*time.Hour),
		note("new", false, models.PriorityNormal, time.Minute),
	})

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "new" || items[1].ID != "old" {
		t.Errorf("expected [new old], got [%s %s]", items[0].ID, items[1].ID)
	}
}

func TestCountersAreDerived(t *testing.T) {
	s, _ := newTestStore()
	s.ReplaceWindow([]models.Notification{
		note("a", false, models.PriorityUrgent, 0),
		note("b", false, models.PriorityNormal, time.Minute),
		note("c", true, models.PriorityUrgent, 2*time.Minute),
	})

	unread, urgent := s.Counters()
	if unread != 2 {
		t.Errorf("expected unread=2, got %d", unread)
	}
	if urgent != 1 {
		t.Errorf("expected urgent=1, got %d", urgent)
	}

	// Counters must track the collection through every mutation path.
	if err := s.ApplyOptimistic("a", models.MutationMarkRead); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	assertCountersMatchItems(t, s)

	s.Rollback("a")
	assertCountersMatchItems(t, s)

	if err := s.ApplyOptimistic("b", models.MutationDelete); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	assertCountersMatchItems(t, s)
}

func assertCountersMatchItems(t *testing.T, s *Store) {
	t.Helper()
	unread, urgent := s.Counters()
	wantUnread, wantUrgent := 0, 0
	for _, item := range s.Items() {
		if !item.Read {
			wantUnread++
			if item.IsUrgent() {
				wantUrgent++
			}
		}
	}
	if unread != wantUnread || urgent != wantUrgent {
		t.Errorf("counters (%d,%d) disagree with items (%d,%d)", unread, urgent, wantUnread, wantUrgent)
	}
}

func TestPendingReadWinsOverLaggingPollWithinGrace(t *testing.T) {
	s, clock := newTestStore()
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	if err := s.ApplyOptimistic("a", models.MutationMarkRead); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	if unread, _ := s.Counters(); unread != 0 {
		t.Errorf("expected unread=0 immediately after optimistic read, got %d", unread)
	}

	// Server lags: poll still says unread, but we're inside the grace period.
	clock.Advance(2 * time.Second)
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	item, ok := s.Get("a")
	if !ok || !item.Read {
		t.Errorf("lagging poll resurrected the unread flag")
	}
}

func TestConfirmedReadStillWinsWithinGrace(t *testing.T) {
	// Spec scenario: markRead, server confirms, next poll still reports
	// read:false within the grace period. Local read must persist.
	s, clock := newTestStore()
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	if err := s.ApplyOptimistic("a", models.MutationMarkRead); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	s.Confirm("a")

	clock.Advance(5 * time.Second)
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	item, _ := s.Get("a")
	if !item.Read {
		t.Error("confirmed read was resurrected by a lagging poll")
	}
	if unread, _ := s.Counters(); unread != 0 {
		t.Errorf("expected unread=0, got %d", unread)
	}
}

func TestServerWinsAfterGraceElapses(t *testing.T) {
	s, clock := newTestStore()
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	if err := s.ApplyOptimistic("a", models.MutationMarkRead); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}

	clock.Advance(PendingGracePeriod + time.Second)
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	item, _ := s.Get("a")
	if item.Read {
		t.Error("expected server state to win after grace period")
	}
	if s.HasPending("a") {
		t.Error("stale pending entry should have been discarded")
	}
}

func TestPendingDeleteHidesItemFromMerge(t *testing.T) {
	s, clock := newTestStore()
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	if err := s.ApplyOptimistic("a", models.MutationDelete); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}

	clock.Advance(time.Second)
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	if _, ok := s.Get("a"); ok {
		t.Error("pending delete should hide the item from a lagging poll")
	}
}

func TestRollbackRestoresExactPriorState(t *testing.T) {
	s, _ := newTestStore()
	window := []models.Notification{
		note("a", false, models.PriorityNormal, 0),
		note("b", false, models.PriorityUrgent, time.Hour),
		note("c", true, models.PriorityNormal, 2*time.Hour),
	}
	s.ReplaceWindow(window)
	before := s.Items()

	if err := s.ApplyOptimistic("b", models.MutationDelete); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	if _, ok := s.Get("b"); ok {
		t.Fatal("delete was not applied optimistically")
	}

	s.Rollback("b")
	after := s.Items()

	if !reflect.DeepEqual(before, after) {
		t.Errorf("rollback did not restore prior state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestRollbackRestoresReadFlagAndCounters(t *testing.T) {
	s, _ := newTestStore()
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityUrgent, 0)})

	if err := s.ApplyOptimistic("a", models.MutationMarkRead); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	s.Rollback("a")

	item, _ := s.Get("a")
	if item.Read {
		t.Error("rollback should restore read=false")
	}
	unread, urgent := s.Counters()
	if unread != 1 || urgent != 1 {
		t.Errorf("expected counters (1,1), got (%d,%d)", unread, urgent)
	}
}

func TestSecondMutationOnPendingIDIsCoalesced(t *testing.T) {
	s, _ := newTestStore()
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	if err := s.ApplyOptimistic("a", models.MutationMarkRead); err != nil {
		t.Fatalf("first mutation failed: %v", err)
	}
	if err := s.ApplyOptimistic("a", models.MutationDelete); err != ErrMutationPending {
		t.Errorf("expected ErrMutationPending, got %v", err)
	}
}

func TestMutationAllowedAfterConfirm(t *testing.T) {
	s, _ := newTestStore()
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	_ = s.ApplyOptimistic("a", models.MutationMarkRead)
	s.Confirm("a")

	if err := s.ApplyOptimistic("a", models.MutationDelete); err != nil {
		t.Errorf("delete after confirmed read should be allowed, got %v", err)
	}
}

func TestApplyOptimisticUnknownID(t *testing.T) {
	s, _ := newTestStore()
	if err := s.ApplyOptimistic("ghost", models.MutationMarkRead); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadAllAppliesPerIDAndPartialRollback(t *testing.T) {
	s, _ := newTestStore()
	s.ReplaceWindow([]models.Notification{
		note("a", false, models.PriorityNormal, 0),
		note("b", false, models.PriorityNormal, time.Minute),
		note("c", false, models.PriorityNormal, 2*time.Minute),
	})

	affected := s.ApplyOptimisticReadAll()
	if len(affected) != 3 {
		t.Fatalf("expected 3 affected ids, got %v", affected)
	}
	if unread, _ := s.Counters(); unread != 0 {
		t.Errorf("expected unread=0 after read-all, got %d", unread)
	}

	// Server reports b failed: only b rolls back.
	s.Confirm("a")
	s.Confirm("c")
	s.Rollback("b")

	unread, _ := s.Counters()
	if unread != 1 {
		t.Errorf("expected unread=1 after partial rollback, got %d", unread)
	}
	b, _ := s.Get("b")
	if b.Read {
		t.Error("b should be unread after rollback")
	}
	a, _ := s.Get("a")
	if !a.Read {
		t.Error("a should stay read")
	}
}

func TestScenarioPollReadConfirmLaggingPoll(t *testing.T) {
	// The end-to-end scenario from the engine contract.
	s, clock := newTestStore()

	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})
	if unread, _ := s.Counters(); unread != 1 {
		t.Fatalf("expected unread=1 after first poll, got %d", unread)
	}

	if err := s.ApplyOptimistic("a", models.MutationMarkRead); err != nil {
		t.Fatalf("ApplyOptimistic failed: %v", err)
	}
	if unread, _ := s.Counters(); unread != 0 {
		t.Fatalf("expected unread=0 immediately, got %d", unread)
	}
	item, _ := s.Get("a")
	if !item.Read {
		t.Fatal("expected read=true immediately")
	}

	s.Confirm("a")

	clock.Advance(3 * time.Second)
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	item, _ = s.Get("a")
	if !item.Read {
		t.Error("read flag must survive a lagging poll within the grace period")
	}
	if unread, _ := s.Counters(); unread != 0 {
		t.Errorf("expected unread=0, got %d", unread)
	}
}

func TestWindowCapsItems(t *testing.T) {
	s, _ := newTestStore()
	s.ReplaceWindow([]models.Notification{
		note("a", false, models.PriorityNormal, 0),
		note("b", false, models.PriorityNormal, time.Minute),
		note("c", false, models.PriorityNormal, 2*time.Minute),
	})

	window := s.Window(2)
	if len(window) != 2 {
		t.Fatalf("expected window of 2, got %d", len(window))
	}
	if window[0].ID != "a" || window[1].ID != "b" {
		t.Errorf("expected newest two [a b], got [%s %s]", window[0].ID, window[1].ID)
	}
}

func TestSoundRequestedOnNewUnread(t *testing.T) {
	clock := &testClock{now: testBase}
	s := NewStoreWithClock(true, clock.Now)

	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})
	if !s.ConsumeSoundRequest() {
		t.Error("expected sound request for new unread item")
	}
	if s.ConsumeSoundRequest() {
		t.Error("sound request should be consumed exactly once")
	}

	// Same window again: nothing new, no signal.
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})
	if s.ConsumeSoundRequest() {
		t.Error("repeated window should not request sound")
	}
}

func TestSoundDisabledSuppressesSignal(t *testing.T) {
	s, _ := newTestStore() // sound disabled
	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})
	if s.ConsumeSoundRequest() {
		t.Error("sound disabled should suppress the signal")
	}
}

func TestSubscribeSignalsOnChange(t *testing.T) {
	s, _ := newTestStore()
	ch := s.Subscribe()

	s.ReplaceWindow([]models.Notification{note("a", false, models.PriorityNormal, 0)})

	select {
	case <-ch:
	default:
		t.Error("expected change signal after merge")
	}
}
