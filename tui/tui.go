// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides the notification panel, history browser, and detail views
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/bellhop/session"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewPanel ViewMode = iota
	ViewHistory
	ViewDetail
	ViewConfirmDelete
)

// readFilter narrows the history table by read state.
type readFilter int

const (
	filterAll readFilter = iota
	filterUnread
	filterRead
)

// storeUpdatedMsg fires whenever the sync store changes underneath the UI.
type storeUpdatedMsg struct{}

// actionDoneMsg is sent when an async mutation round-trip completes.
type actionDoneMsg struct {
	label string
	err   error
}

// pageLoadedMsg is sent when a history page fetch completes.
type pageLoadedMsg struct {
	page  int
	added int
	total int
	err   error
}

// Model is the main bubbletea model
type Model struct {
	sess     *session.Session
	viewMode ViewMode

	// Panel / history selection state
	selectedRow int
	selectedID  string

	// History state
	filter      readFilter
	searchInput textinput.Model
	searching   bool
	historyPage int
	historyMore bool

	// Pending delete confirmation
	deleteID string

	// Transient feedback line and chime glyph
	statusMsg string
	chime     bool

	updates <-chan struct{}

	width  int
	height int
}

// NewModel creates a new TUI model bound to a running session
func NewModel(sess *session.Session) Model {
	search := textinput.New()
	search.Placeholder = "Search title or message..."
	search.CharLimit = 64

	return Model{
		sess:        sess,
		viewMode:    ViewPanel,
		searchInput: search,
		historyPage: 1,
		historyMore: true,
		updates:     sess.Store.Subscribe(),
		width:       80,
		height:      24,
	}
}

func (m Model) Init() tea.Cmd {
	m.sess.Store.SetDropdownOpen(true)
	return waitForUpdate(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeUpdatedMsg:
		if m.sess.Store.ConsumeSoundRequest() {
			m.chime = true
		}
		m.clampSelection()
		return m, waitForUpdate(m.updates)

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = "✗ " + msg.label + " failed: " + msg.err.Error()
		} else {
			m.statusMsg = "✓ " + msg.label
		}
		m.clampSelection()
		return m, nil

	case pageLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "✗ load failed: " + msg.err.Error()
			return m, nil
		}
		m.historyPage = msg.page
		m.historyMore = len(m.sess.Store.Items()) < msg.total
		if msg.added == 0 {
			m.historyMore = false
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewPanel:
		return m.renderPanelView()
	case ViewHistory:
		return m.renderHistoryView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The search input owns the keyboard while active
	if m.viewMode == ViewHistory && m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// A keystroke acknowledges the chime
	m.chime = false

	switch m.viewMode {
	case ViewPanel:
		return m.handlePanelKeys(msg)
	case ViewHistory:
		return m.handleHistoryKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// waitForUpdate blocks on the store's change channel and converts the
// signal into a bubbletea message.
func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return storeUpdatedMsg{}
	}
}

// markRead runs the mark-read round trip off the UI goroutine.
func (m Model) markRead(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.sess.Dispatcher.MarkRead(context.Background(), id)
		return actionDoneMsg{label: "marked read", err: err}
	}
}

// markAllRead runs the bulk mark-read round trip.
func (m Model) markAllRead() tea.Cmd {
	return func() tea.Msg {
		err := m.sess.Dispatcher.MarkAllRead(context.Background())
		return actionDoneMsg{label: "marked all read", err: err}
	}
}

// deleteNotification runs the delete round trip.
func (m Model) deleteNotification(id string) tea.Cmd {
	return func() tea.Msg {
		err := m.sess.Dispatcher.Delete(context.Background(), id)
		return actionDoneMsg{label: "deleted", err: err}
	}
}

// loadPage fetches the next history page.
func (m Model) loadPage(page int) tea.Cmd {
	return func() tea.Msg {
		added, total, err := m.sess.LoadMore(context.Background(), page)
		return pageLoadedMsg{page: page, added: added, total: total, err: err}
	}
}

// clampSelection keeps the cursor inside the current row set after merges
// shrink it.
func (m *Model) clampSelection() {
	count := len(m.currentRows())
	if count == 0 {
		m.selectedRow = 0
		return
	}
	if m.selectedRow >= count {
		m.selectedRow = count - 1
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	counterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	urgentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	unreadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	readStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)
