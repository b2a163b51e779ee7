// ABOUTME: Data models for notifications and pending mutations
// ABOUTME: Defines the Notification record, priority/type constants, and sort helpers
package models

import (
	"fmt"
	"sort"
	"time"
)

// Priority constants.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification type constants.
const (
	TypeMessageFromClient = "message_from_client"
	TypeMessageReply      = "message_reply"
	TypeInternalNote      = "internal_note"
	TypeLeadAssigned      = "lead_assigned"
	TypeLeadStatusChanged = "lead_status_changed"
	TypeUserLinked        = "user_linked"
	TypeCommentNew        = "comment_new"
	TypeCommentApproved   = "comment_approved"
	TypeCommentRejected   = "comment_rejected"
	TypeCommentReply      = "comment_reply"
	TypeReminder          = "reminder"
	TypeTask              = "task"
)

// Metadata keys the server populates for routing.
const (
	MetaEntityID = "entity_id"
	MetaSlug     = "slug"
)

// Action is an explicit navigation override attached by the server.
type Action struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// Notification is one server-issued notification. Everything except the
// Read flag is immutable on the client; Read flips locally during an
// optimistic window before the server confirms.
type Notification struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Priority  string            `json:"priority"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
	Action    *Action           `json:"action,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IsUrgent reports whether the notification contributes to the urgent counter.
func (n *Notification) IsUrgent() bool {
	return n.Priority == PriorityUrgent
}

// Clone returns a deep copy, used for prior snapshots in rollback handling.
func (n Notification) Clone() Notification {
	out := n
	if n.Action != nil {
		action := *n.Action
		out.Action = &action
	}
	if n.Metadata != nil {
		out.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Mutation kind constants for pending optimistic changes.
const (
	MutationMarkRead = "mark_read"
	MutationReadAll  = "read_all"
	MutationDelete   = "delete"
)

// PendingMutation tracks one optimistic change awaiting server confirmation.
// Prior holds the record as it was before the change so rollback can restore
// it exactly; AppliedAt drives the stale-pending grace period.
type PendingMutation struct {
	Kind      string
	Prior     Notification
	AppliedAt time.Time
}

// SortByCreatedAt sorts notifications by creation time, newest first by
// default. Ties break on ID so merges are deterministic.
func SortByCreatedAt(items []Notification, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		if ascending {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// TimeAgo formats a timestamp as a relative display string.
func TimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		return fmt.Sprintf("%d minute%s ago", m, pluralize(m))
	case d < 24*time.Hour:
		h := int(d.Hours())
		return fmt.Sprintf("%d hour%s ago", h, pluralize(h))
	default:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, pluralize(days))
	}
}

// pluralize returns "s" if count != 1, otherwise ""
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
