// ABOUTME: Database operations for the offline notification snapshot
// ABOUTME: Persists the last fetched window so views render before the first poll
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/bellhop/models"
)

// SaveSnapshot replaces the cached window with the given items. The cache
// is only a warm-start convenience; the server stays authoritative.
func SaveSnapshot(db *sql.DB, items []models.Notification) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM snapshot`); err != nil {
		return err
	}

	query := `
		INSERT INTO snapshot (
			id, type, title, message, priority, read,
			created_at, action_url, action_label, metadata, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	for _, item := range items {
		var actionURL, actionLabel *string
		if item.Action != nil {
			actionURL = &item.Action.URL
			actionLabel = &item.Action.Label
		}

		var metadata *string
		if len(item.Metadata) > 0 {
			data, err := json.Marshal(item.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal metadata for %s: %w", item.ID, err)
			}
			s := string(data)
			metadata = &s
		}

		_, err := tx.Exec(query,
			item.ID, item.Type, item.Title, item.Message, item.Priority,
			item.Read, item.CreatedAt, actionURL, actionLabel, metadata, now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the cached window, newest first.
func LoadSnapshot(db *sql.DB) ([]models.Notification, error) {
	query := `
		SELECT id, type, title, message, priority, read,
		       created_at, action_url, action_label, metadata
		FROM snapshot
		ORDER BY created_at DESC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []models.Notification
	for rows.Next() {
		var n models.Notification
		var actionURL, actionLabel, metadata *string
		err := rows.Scan(
			&n.ID, &n.Type, &n.Title, &n.Message, &n.Priority, &n.Read,
			&n.CreatedAt, &actionURL, &actionLabel, &metadata,
		)
		if err != nil {
			return nil, err
		}

		if actionURL != nil && *actionURL != "" {
			n.Action = &models.Action{URL: *actionURL}
			if actionLabel != nil {
				n.Action.Label = *actionLabel
			}
		}
		if metadata != nil && *metadata != "" {
			if err := json.Unmarshal([]byte(*metadata), &n.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata for %s: %w", n.ID, err)
			}
		}

		items = append(items, n)
	}
	return items, rows.Err()
}
