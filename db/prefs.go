// ABOUTME: Database operations for persisted preferences
// ABOUTME: Handles the cross-session sound toggle stored as key/value rows
package db

import (
	"database/sql"
	"errors"
	"strconv"
	"time"
)

const soundEnabledKey = "sound_enabled"

// GetSoundEnabled reads the persisted sound preference. Defaults to true
// when the preference has never been written.
func GetSoundEnabled(db *sql.DB) (bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, soundEnabledKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return true, err
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return true, nil
	}
	return enabled, nil
}

// SetSoundEnabled persists the sound preference.
func SetSoundEnabled(db *sql.DB, enabled bool) error {
	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	_, err := db.Exec(query, soundEnabledKey, strconv.FormatBool(enabled), time.Now().UTC())
	return err
}
