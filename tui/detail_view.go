// ABOUTME: Detail view for a single notification
// ABOUTME: Shows full fields plus the resolved navigation destination
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(14)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("NOTIFICATION"))
	s.WriteString("\n\n")

	n, ok := m.sess.Store.Get(m.selectedID)
	if !ok {
		s.WriteString(statusStyle.Render("This notification is gone."))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))
		return s.String()
	}

	status := "read"
	if !n.Read {
		status = "unread"
	}
	if m.sess.Store.HasPending(n.ID) {
		status += " (pending)"
	}

	s.WriteString(m.renderField("Title", n.Title))
	s.WriteString(m.renderField("Message", n.Message))
	s.WriteString(m.renderField("Type", n.Type))
	s.WriteString(m.renderField("Priority", n.Priority))
	s.WriteString(m.renderField("Status", status))
	s.WriteString(m.renderField("Received", n.CreatedAt.Format("2006-01-02 15:04")))
	s.WriteString(m.renderField("Opens", m.sess.ResolveNotification(n)))

	if n.Action != nil && n.Action.Label != "" {
		s.WriteString(m.renderField("Action", n.Action.Label))
	}

	if m.statusMsg != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.statusMsg))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())
	return s.String()
}

func (m Model) renderField(label, value string) string {
	return fieldLabelStyle.Render(label) + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Enter: Open",
		"r: Mark read",
		"d: Delete",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "o":
		return m, m.openNotification(m.selectedID)
	case "r":
		if n, ok := m.sess.Store.Get(m.selectedID); ok && !n.Read {
			return m, m.markRead(m.selectedID)
		}
	case "d":
		m.viewMode = ViewConfirmDelete
		m.deleteID = m.selectedID
	case "esc":
		m.viewMode = ViewPanel
		m.sess.Store.SetDropdownOpen(true)
		m.clampSelection()
	}

	return m, nil
}
