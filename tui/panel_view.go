// ABOUTME: Notification panel view, the TUI equivalent of the navbar dropdown
// ABOUTME: Renders the live window with counters, pending markers, and quick actions
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/bellhop/models"
)

func (m Model) renderPanelView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("BELLHOP"))
	s.WriteString("\n\n")
	s.WriteString(m.renderCounters())
	s.WriteString("\n\n")

	items := m.currentRows()
	if len(items) == 0 {
		s.WriteString(statusStyle.Render("No notifications. All quiet."))
		s.WriteString("\n")
	}

	for i, n := range items {
		s.WriteString(m.renderRow(n, i == m.selectedRow))
		s.WriteString("\n")
	}

	if m.statusMsg != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.statusMsg))
		s.WriteString("\n")
	}

	s.WriteString(m.renderPanelHelp())
	return s.String()
}

// renderCounters draws the bell line: counts, chime glyph, sound state.
func (m Model) renderCounters() string {
	unread, urgent := m.sess.Store.Counters()

	bell := "🔔"
	if !m.sess.Store.SoundEnabled() {
		bell = "🔕"
	}

	line := fmt.Sprintf("%s %s", bell, counterStyle.Render(fmt.Sprintf("%d unread", unread)))
	if urgent > 0 {
		line += "  " + urgentStyle.Render(fmt.Sprintf("%d urgent", urgent))
	}
	if m.chime {
		line += "  " + urgentStyle.Render("♪")
	}
	if last := m.sess.Store.LastPollAt(); !last.IsZero() {
		line += "  " + statusStyle.Render("updated "+models.TimeAgo(last))
	}
	return line
}

// renderRow draws one notification line shared by panel and detail lists.
func (m Model) renderRow(n models.Notification, selected bool) string {
	var row strings.Builder

	if selected {
		row.WriteString("▶ ")
	} else {
		row.WriteString("  ")
	}

	glyph := " "
	switch {
	case !n.Read && n.IsUrgent():
		glyph = "‼"
	case !n.Read:
		glyph = "●"
	}

	body := fmt.Sprintf("%s %-18s %s", glyph, truncate(n.Title, 18), truncate(n.Message, 40))
	age := models.TimeAgo(n.CreatedAt)

	var rendered string
	switch {
	case !n.Read && n.IsUrgent():
		rendered = urgentStyle.Render(body)
	case !n.Read:
		rendered = unreadStyle.Render(body)
	default:
		rendered = readStyle.Render(body)
	}

	if selected {
		rendered = selectedStyle.Render(body)
	}

	row.WriteString(rendered)
	row.WriteString("  ")
	row.WriteString(statusStyle.Render(age))

	if m.sess.Store.HasPending(n.ID) {
		row.WriteString("  ")
		row.WriteString(pendingStyle.Render("⟳"))
	}

	return row.String()
}

func (m Model) renderPanelHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Enter: Open",
		"r: Mark read",
		"a: Read all",
		"d: Delete",
		"s: Sound",
		"h: History",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handlePanelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.currentRows()

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(items)-1 {
			m.selectedRow++
		}
	case "enter", "o":
		if n, ok := m.selectedNotification(); ok {
			return m, m.openNotification(n.ID)
		}
	case "v":
		if n, ok := m.selectedNotification(); ok {
			m.viewMode = ViewDetail
			m.selectedID = n.ID
		}
	case "r":
		if n, ok := m.selectedNotification(); ok && !n.Read {
			return m, m.markRead(n.ID)
		}
	case "a":
		if unread, _ := m.sess.Store.Counters(); unread > 0 {
			return m, m.markAllRead()
		}
	case "d":
		if n, ok := m.selectedNotification(); ok {
			m.viewMode = ViewConfirmDelete
			m.deleteID = n.ID
		}
	case "s":
		return m, m.toggleSound()
	case "h", "tab":
		m.viewMode = ViewHistory
		m.selectedRow = 0
		m.sess.Store.SetDropdownOpen(false)
	}

	return m, nil
}

// selectedNotification resolves the cursor to a record in the current rows.
func (m Model) selectedNotification() (models.Notification, bool) {
	items := m.currentRows()
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return models.Notification{}, false
	}
	return items[m.selectedRow], true
}

// currentRows returns whatever rows the active view presents.
func (m Model) currentRows() []models.Notification {
	if m.viewMode == ViewHistory {
		return m.historyRows()
	}
	return m.sess.Store.Window(m.sess.Config.WindowSize)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
