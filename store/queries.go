// ABOUTME: Read-side query helpers for the history view
// ABOUTME: Handles filtering, substring search, and deduplicated page appends
package store

import (
	"strings"

	"github.com/harperreed/bellhop/models"
)

// Filter returns items matching the read flag; nil means everything.
func (s *Store) Filter(read *bool) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if read == nil {
		return cloneAll(s.items)
	}
	var out []models.Notification
	for i := range s.items {
		if s.items[i].Read == *read {
			out = append(out, s.items[i].Clone())
		}
	}
	return out
}

// Search returns items whose title or message contains the query,
// case-insensitive. An empty query matches everything.
func (s *Store) Search(query string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return cloneAll(s.items)
	}
	var out []models.Notification
	for i := range s.items {
		title := strings.ToLower(s.items[i].Title)
		message := strings.ToLower(s.items[i].Message)
		if strings.Contains(title, query) || strings.Contains(message, query) {
			out = append(out, s.items[i].Clone())
		}
	}
	return out
}

// AppendPage merges an older history page into the collection, deduplicated
// by id. Ids already held keep their current state (the window merge owns
// conflict handling); ids under a tracked delete are not re-added. Returns
// how many records were actually appended.
func (s *Store) AppendPage(pageItems []models.Notification) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := make(map[string]bool, len(s.items))
	for i := range s.items {
		held[s.items[i].ID] = true
	}

	added := 0
	for _, item := range pageItems {
		if held[item.ID] {
			continue
		}
		if p, ok := s.pending[item.ID]; ok && p.Kind == models.MutationDelete {
			continue
		}
		s.items = append(s.items, item.Clone())
		held[item.ID] = true
		added++
	}

	if added > 0 {
		models.SortByCreatedAt(s.items, false)
		s.recomputeCounters()
		s.notifyLocked()
	}
	return added
}
