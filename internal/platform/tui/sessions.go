package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/meyendtris/internal/storage"
)

// SessionStore is the read side of the session database.
type SessionStore interface {
	RecentSessions(limit int) ([]storage.Session, error)
	MarkerCounts(session string) (map[string]int, error)
}

// SessionsKeyMap defines the key bindings for the session browser.
type SessionsKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SessionsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SessionsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Quit}}
}

// DefaultSessionsKeyMap returns default key bindings.
func DefaultSessionsKeyMap() SessionsKeyMap {
	return SessionsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SessionsModel is the Bubble Tea model for browsing recorded sessions.
type SessionsModel struct {
	store    SessionStore
	sessions []storage.Session
	err      error
	table    table.Model
	help     help.Model
	keys     SessionsKeyMap
	width    int
	height   int
	quitting bool
}

// NewSessionsModel loads up to limit sessions from store.
func NewSessionsModel(store SessionStore, limit, width, height int) SessionsModel {
	m := SessionsModel{
		store:  store,
		keys:   DefaultSessionsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.sessions, m.err = store.RecentSessions(limit)
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

// createTable creates a new table with the session columns.
func (m *SessionsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 14},
		{Title: "Input", Width: 9},
		{Title: "Length", Width: 8},
		{Title: "Pieces", Width: 7},
		{Title: "Lines", Width: 6},
		{Title: "Undos", Width: 6},
		{Title: "Restarts", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for title, detail and help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// SessionRows formats sessions as table rows.
func SessionRows(sessions []storage.Session) []table.Row {
	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		length := "running"
		if d := s.Duration(); d > 0 {
			length = fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
		}
		rows[i] = table.Row{
			s.StartedAt.Format("Jan 02 15:04"),
			string(s.Input),
			length,
			fmt.Sprintf("%d", s.Pieces),
			fmt.Sprintf("%d", s.Lines),
			fmt.Sprintf("%d", s.Undos),
			fmt.Sprintf("%d", s.Restarts),
		}
	}
	return rows
}

func (m *SessionsModel) updateTableRows() {
	m.table.SetRows(SessionRows(m.sessions))
	m.table.GotoTop()
}

// Init initializes the model.
func (m SessionsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the session browser.
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the session browser.
func (m SessionsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render("RECORDED SESSIONS"))
	b.WriteString("\n\n")

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	switch {
	case m.err != nil:
		b.WriteString(dim.Render("Cannot read sessions: " + m.err.Error()))
	case len(m.sessions) == 0:
		b.WriteString(dim.Italic(true).Render("No sessions recorded yet."))
	default:
		tableStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
		b.WriteString(tableStyle.Render(m.table.View()))
		b.WriteString("\n")
		b.WriteString(dim.Render(m.detail()))
	}

	b.WriteString("\n")
	b.WriteString(dim.Render(m.help.View(m.keys)))
	return b.String()
}

// detail summarises the markers of the selected session.
func (m SessionsModel) detail() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sessions) {
		return ""
	}
	s := m.sessions[i]

	counts, err := m.store.MarkerCounts(s.ID)
	if err != nil {
		return "markers unavailable"
	}
	return s.ID + "  " + FormatMarkerCounts(counts)
}

// FormatMarkerCounts renders counts as "name=n" pairs sorted by name.
func FormatMarkerCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "no markers"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}
	return strings.Join(parts, " ")
}

// RunSessions runs the session browser.
func RunSessions(store SessionStore, limit, width, height int) error {
	p := tea.NewProgram(
		NewSessionsModel(store, limit, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
