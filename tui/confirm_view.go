// ABOUTME: Delete confirmation view and browser/sound commands
// ABOUTME: Guards destructive removal behind an explicit confirm dialog
package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	n, ok := m.sess.Store.Get(m.deleteID)
	if !ok {
		return statusStyle.Render("This notification is already gone. Press Esc.")
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := "Delete this notification?"
	info := fmt.Sprintf("\n%s\n", truncate(n.Title, 50))
	warning := "\nIf the server refuses, it will reappear."

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		info,
		warning,
		"",
		buttons,
	)

	return confirmBoxStyle.Render(content)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.deleteID
		m.deleteID = ""
		m.viewMode = ViewPanel
		m.sess.Store.SetDropdownOpen(true)
		m.clampSelection()
		return m, m.deleteNotification(id)
	case "n", "N", "esc":
		m.deleteID = ""
		m.viewMode = ViewPanel
		m.sess.Store.SetDropdownOpen(true)
	}

	return m, nil
}

// openNotification resolves the destination and launches the browser, then
// marks the record as seen.
func (m Model) openNotification(id string) tea.Cmd {
	return func() tea.Msg {
		path, err := m.sess.Resolve(id)
		if err != nil {
			return actionDoneMsg{label: "open", err: err}
		}

		target := path
		if len(path) > 0 && path[0] == '/' {
			target = m.sess.Config.ServerURL + path
		}

		if err := openInBrowser(target); err != nil {
			return actionDoneMsg{label: "open", err: err}
		}

		return actionDoneMsg{label: "opened " + target, err: markSeen(m, id)}
	}
}

// markSeen marks an opened notification read, tolerating already-read rows.
func markSeen(m Model, id string) error {
	if n, ok := m.sess.Store.Get(id); ok && !n.Read {
		return m.sess.Dispatcher.MarkRead(context.Background(), id)
	}
	return nil
}

// toggleSound flips the persisted sound preference.
func (m Model) toggleSound() tea.Cmd {
	return func() tea.Msg {
		enabled, err := m.sess.ToggleSound()
		label := "sound off"
		if enabled {
			label = "sound on"
		}
		return actionDoneMsg{label: label, err: err}
	}
}

// openInBrowser launches the platform's default browser.
func openInBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
