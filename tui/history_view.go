// ABOUTME: Full history view with search, read filters, and paged loading
// ABOUTME: Renders all held notifications as a bubbles table
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/bellhop/models"
)

func (m Model) renderHistoryView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("NOTIFICATION HISTORY"))
	s.WriteString("\n\n")
	s.WriteString(m.renderFilterLine())
	s.WriteString("\n\n")
	s.WriteString(m.renderHistoryTable())
	s.WriteString("\n")

	if m.historyMore {
		s.WriteString(statusStyle.Render("m: load more"))
		s.WriteString("\n")
	}

	if m.statusMsg != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.statusMsg))
		s.WriteString("\n")
	}

	s.WriteString(m.renderHistoryHelp())
	return s.String()
}

func (m Model) renderFilterLine() string {
	labels := map[readFilter]string{
		filterAll:    "all",
		filterUnread: "unread",
		filterRead:   "read",
	}

	line := counterStyle.Render("filter: " + labels[m.filter])

	if m.searching {
		line += "  /" + m.searchInput.View()
	} else if query := m.searchInput.Value(); query != "" {
		line += "  " + statusStyle.Render("search: "+query)
	}

	return line
}

func (m Model) renderHistoryTable() string {
	items := m.historyRows()
	if len(items) == 0 {
		return statusStyle.Render("Nothing matches.")
	}

	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Title", Width: 24},
		{Title: "Message", Width: 38},
		{Title: "Type", Width: 20},
		{Title: "Age", Width: 12},
	}

	var rows []table.Row
	for _, n := range items {
		glyph := " "
		switch {
		case !n.Read && n.IsUrgent():
			glyph = "‼"
		case !n.Read:
			glyph = "●"
		}
		rows = append(rows, table.Row{
			glyph,
			truncate(n.Title, 24),
			truncate(n.Message, 38),
			n.Type,
			models.TimeAgo(n.CreatedAt),
		})
	}

	height := m.height - 10
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

// historyRows applies the read filter and any search query over everything
// the store holds.
func (m Model) historyRows() []models.Notification {
	if query := m.searchInput.Value(); query != "" {
		matched := m.sess.Store.Search(query)
		if m.filter == filterAll {
			return matched
		}
		want := m.filter == filterRead
		var out []models.Notification
		for _, n := range matched {
			if n.Read == want {
				out = append(out, n)
			}
		}
		return out
	}

	switch m.filter {
	case filterUnread:
		read := false
		return m.sess.Store.Filter(&read)
	case filterRead:
		read := true
		return m.sess.Store.Filter(&read)
	default:
		return m.sess.Store.Items()
	}
}

func (m Model) renderHistoryHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Enter: Open",
		"v: Details",
		"r: Mark read",
		"d: Delete",
		"f: Filter",
		"/: Search",
		"Esc: Panel",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.historyRows()

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
	case "f":
		m.filter = (m.filter + 1) % 3
		m.selectedRow = 0
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, nil
	case "m":
		if m.historyMore {
			m.statusMsg = fmt.Sprintf("loading page %d...", m.historyPage+1)
			return m, m.loadPage(m.historyPage + 1)
		}
	case "s":
		return m, m.toggleSound()
	case "esc":
		m.viewMode = ViewPanel
		m.selectedRow = 0
		m.sess.Store.SetDropdownOpen(true)
	}

	return m, nil
}

// handleSearchKeys routes keystrokes into the search input while it has
// focus.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.selectedRow = 0
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}
