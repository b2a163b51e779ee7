// ABOUTME: Unit tests for CLI helpers
// ABOUTME: Covers destination URL joining and table glyph selection
package cli

import (
	"testing"
	"time"

	"github.com/harperreed/bellhop/models"
)

func TestDestinationURLJoinsRelativePaths(t *testing.T) {
	got, err := destinationURL("https://example.com", "/admin/leads/42")
	if err != nil {
		t.Fatalf("destinationURL failed: %v", err)
	}
	if got != "https://example.com/admin/leads/42" {
		t.Errorf("expected joined URL, got %s", got)
	}
}

func TestDestinationURLPassesAbsoluteThrough(t *testing.T) {
	got, err := destinationURL("https://example.com", "https://elsewhere.com/doc")
	if err != nil {
		t.Fatalf("destinationURL failed: %v", err)
	}
	if got != "https://elsewhere.com/doc" {
		t.Errorf("expected absolute URL untouched, got %s", got)
	}
}

func TestStatusGlyph(t *testing.T) {
	now := time.Now()

	urgent := models.Notification{ID: "1", Priority: models.PriorityUrgent, CreatedAt: now}
	if statusGlyph(urgent) != "‼️" {
		t.Error("expected urgent glyph for unread urgent notification")
	}

	unread := models.Notification{ID: "2", Priority: models.PriorityNormal, CreatedAt: now}
	if statusGlyph(unread) != "●" {
		t.Error("expected unread glyph")
	}

	read := models.Notification{ID: "3", Priority: models.PriorityUrgent, Read: true, CreatedAt: now}
	if statusGlyph(read) != " " {
		t.Error("expected blank glyph for read notification")
	}
}

func TestSoundWord(t *testing.T) {
	if soundWord(true) != "on" || soundWord(false) != "off" {
		t.Error("unexpected sound wording")
	}
}
