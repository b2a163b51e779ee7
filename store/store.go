// ABOUTME: In-memory sync store for notification state
// ABOUTME: Owns merge/reconcile logic, pending mutations, and derived counters
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/harperreed/bellhop/models"
)

// PendingGracePeriod is how long a local mutation's effect overrides
// conflicting server data for the same id. It covers both an in-flight
// mutation and the lag window after the server confirmed one but polls
// still report the old state. After it elapses the server wins, so a lost
// response cannot freeze state forever. It sits between the request timeout
// (8s) and the poll interval (30s): the first poll after expiry reclaims
// the record.
const PendingGracePeriod = 10 * time.Second

// ErrNotFound is returned when a mutation targets an id the store doesn't hold.
var ErrNotFound = errors.New("notification not found")

// ErrMutationPending is returned when a mutation targets an id that already
// has one in flight. Callers treat it as a no-op (the intent is coalesced).
var ErrMutationPending = errors.New("mutation already pending for id")

// pendingEntry is one tracked local mutation. Unconfirmed entries can be
// rolled back; confirmed entries only remain as a merge guard until the
// grace period runs out.
type pendingEntry struct {
	models.PendingMutation
	confirmed bool
}

// Store is the single source of truth for notification state in a session.
// The poll loop and the dispatcher both write into it; presentation adapters
// only read. Every mutation runs to completion under one lock before any
// other is observed.
type Store struct {
	mu sync.Mutex

	items   []models.Notification
	pending map[string]pendingEntry

	unreadCount int
	urgentCount int

	dropdownOpen   bool
	soundEnabled   bool
	soundRequested bool
	lastPollAt     time.Time

	subscribers []chan struct{}
	now         func() time.Time
}

// NewStore creates an empty store. soundEnabled comes from the persisted
// preference.
func NewStore(soundEnabled bool) *Store {
	return NewStoreWithClock(soundEnabled, time.Now)
}

// NewStoreWithClock creates a store with an injected clock, used by tests
// to drive the grace period.
func NewStoreWithClock(soundEnabled bool, now func() time.Time) *Store {
	return &Store{
		pending:      map[string]pendingEntry{},
		soundEnabled: soundEnabled,
		now:          now,
	}
}

// Seed loads a cached window without touching poll metadata or alerting
// signals. Used at session start before the first fetch lands.
func (s *Store) Seed(items []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = cloneAll(items)
	models.SortByCreatedAt(s.items, false)
	s.recomputeCounters()
	s.notifyLocked()
}

// ReplaceWindow merges a freshly fetched server window into the store.
//
// For each incoming id with a tracked mutation inside the grace period, the
// local effect wins: a mark-read forces Read=true over whatever the server
// reports, a delete drops the item from the merge. A tracked mutation older
// than the grace period is discarded and the server state wins
// unconditionally. Ids the server no longer returns are removed; a pending
// delete among them is treated as confirmed by observation.
func (s *Store) ReplaceWindow(serverItems []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool, len(s.items))
	for _, item := range s.items {
		known[item.ID] = true
	}

	now := s.now()
	merged := make([]models.Notification, 0, len(serverItems))
	incoming := make(map[string]bool, len(serverItems))
	newUnread := false

	for _, serverItem := range serverItems {
		incoming[serverItem.ID] = true
		item := serverItem.Clone()

		if p, ok := s.pending[serverItem.ID]; ok {
			if now.Sub(p.AppliedAt) > PendingGracePeriod {
				// Stale guard: the response was lost or the server is
				// hopelessly behind. Its word stands now.
				delete(s.pending, serverItem.ID)
			} else {
				switch p.Kind {
				case models.MutationDelete:
					continue
				case models.MutationMarkRead, models.MutationReadAll:
					item.Read = true
				}
			}
		}

		if !item.Read && !known[item.ID] {
			newUnread = true
		}
		merged = append(merged, item)
	}

	// Ids absent from the server window were deleted elsewhere (or our own
	// delete went through); drop any tracking for them.
	for id := range s.pending {
		if !incoming[id] {
			delete(s.pending, id)
		}
	}

	models.SortByCreatedAt(merged, false)
	s.items = merged
	s.lastPollAt = now
	s.recomputeCounters()

	if newUnread && s.soundEnabled {
		s.soundRequested = true
	}
	s.notifyLocked()
}

// ApplyOptimistic records a pending mutation for id and applies its local
// effect immediately. The prior record is snapshotted for rollback. A second
// mutation on an id with one still in flight returns ErrMutationPending.
func (s *Store) ApplyOptimistic(id, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyOptimisticLocked(id, kind)
}

// ApplyOptimisticReadAll marks every loaded unread item read, recording one
// pending entry per affected id so partial failures roll back id-by-id.
// Returns the affected ids.
func (s *Store) ApplyOptimisticReadAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, item := range s.items {
		if item.Read {
			continue
		}
		ids = append(ids, item.ID)
	}

	var affected []string
	for _, id := range ids {
		if err := s.applyOptimisticLocked(id, models.MutationReadAll); err == nil {
			affected = append(affected, id)
		}
	}
	return affected
}

func (s *Store) applyOptimisticLocked(id, kind string) error {
	if p, ok := s.pending[id]; ok && !p.confirmed {
		return ErrMutationPending
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	// A confirmed guard entry for the same id is superseded, e.g. deleting
	// a notification right after its mark-read confirmed.
	s.pending[id] = pendingEntry{
		PendingMutation: models.PendingMutation{
			Kind:      kind,
			Prior:     s.items[idx].Clone(),
			AppliedAt: s.now(),
		},
	}

	switch kind {
	case models.MutationMarkRead, models.MutationReadAll:
		s.items[idx].Read = true
	case models.MutationDelete:
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}

	s.recomputeCounters()
	s.notifyLocked()
	return nil
}

// Confirm marks the pending mutation for id as accepted by the server. The
// entry stays behind as a merge guard until the grace period expires, so a
// lagging poll cannot resurrect the old state.
func (s *Store) Confirm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return
	}
	p.confirmed = true
	s.pending[id] = p
}

// Rollback restores the prior snapshot for id and clears the pending entry.
// A rolled-back delete re-inserts the record at its original sorted position.
// Confirmed entries are not rolled back.
func (s *Store) Rollback(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok || p.confirmed {
		return
	}
	delete(s.pending, id)

	switch p.Kind {
	case models.MutationMarkRead, models.MutationReadAll:
		if idx := s.indexOf(id); idx >= 0 {
			s.items[idx] = p.Prior.Clone()
		}
	case models.MutationDelete:
		s.items = append(s.items, p.Prior.Clone())
		models.SortByCreatedAt(s.items, false)
	}

	s.recomputeCounters()
	s.notifyLocked()
}

// Counters returns the derived unread and urgent counts.
func (s *Store) Counters() (unread, urgent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCount, s.urgentCount
}

// Items returns a copy of the full ordered collection.
func (s *Store) Items() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.items)
}

// Window returns a copy of the newest w items for the bell panel.
func (s *Store) Window(w int) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w <= 0 || w > len(s.items) {
		w = len(s.items)
	}
	return cloneAll(s.items[:w])
}

// Get returns the record for id, if held.
func (s *Store) Get(id string) (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.items[idx].Clone(), true
	}
	return models.Notification{}, false
}

// HasPending reports whether id has an unconfirmed mutation in flight.
func (s *Store) HasPending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	return ok && !p.confirmed
}

// LastPollAt returns when the last successful poll merged.
func (s *Store) LastPollAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPollAt
}

// DropdownOpen reports the bell panel visibility flag.
func (s *Store) DropdownOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropdownOpen
}

// SetDropdownOpen sets the bell panel visibility flag.
func (s *Store) SetDropdownOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropdownOpen == open {
		return
	}
	s.dropdownOpen = open
	s.notifyLocked()
}

// SoundEnabled reports the sound preference.
func (s *Store) SoundEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.soundEnabled
}

// SetSoundEnabled sets the sound preference. Persisting it across sessions
// is the session's job.
func (s *Store) SetSoundEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.soundEnabled == enabled {
		return
	}
	s.soundEnabled = enabled
	s.notifyLocked()
}

// ConsumeSoundRequest reports whether a merge raised the sound signal since
// the last call, clearing it. Adapters decide what a "sound" actually is.
func (s *Store) ConsumeSoundRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	requested := s.soundRequested
	s.soundRequested = false
	return requested
}

// Subscribe returns a channel that receives a signal after every state
// change. The channel is buffered; a slow reader misses intermediate
// signals, never blocks a mutation.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// recomputeCounters rebuilds both counters as a full fold over items.
// Never incremental, so they cannot drift from the collection.
func (s *Store) recomputeCounters() {
	unread, urgent := 0, 0
	for i := range s.items {
		if s.items[i].Read {
			continue
		}
		unread++
		if s.items[i].IsUrgent() {
			urgent++
		}
	}
	s.unreadCount = unread
	s.urgentCount = urgent
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(items []models.Notification) []models.Notification {
	out := make([]models.Notification, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}
