package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/config"
	"github.com/lexai-app/lexai/internal/logging"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/session"
	"github.com/lexai-app/lexai/internal/tui/keymap"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/screen"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

// phase is the top-level state of the application.
type phase int

const (
	// phaseLoading is shown until the session has been restored.
	phaseLoading phase = iota
	// phaseAuth is the sign-in card.
	phaseAuth
	// phaseMain is the sidebar, top bar and current screen.
	phaseMain
)

// logoutIndex is the sidebar row after the menu items.
var logoutIndex = len(router.MenuItems())

// Model holds the TUI application state
type Model struct {
	// Core components
	shell  *session.Shell
	deps   screen.Deps
	logger *logging.Logger
	keys   keymap.Keymap

	// UI state
	phase    phase
	width    int
	height   int
	quitting bool
	showHelp bool
	spinner  spinner.Model
	help     help.Model
	auth     authModel

	// Main application state
	router       *router.Router
	screen       screen.Screen
	gen          uint64
	caseID       string
	sidebarOpen  bool
	sidebarWidth int
	focusSidebar bool
	menuCursor   int
}

// NewModel creates a new TUI model. deps.Shell must be set.
func NewModel(deps screen.Deps, cfg config.TUIConfig) Model {
	if deps.Logger == nil {
		deps.Logger = logging.NopLogger()
	}
	if deps.RecentLimit <= 0 {
		deps.RecentLimit = cfg.RecentLimit
	}
	deps.Keys = keymap.Default()

	return Model{
		shell:        deps.Shell,
		deps:         deps,
		logger:       deps.Logger,
		keys:         deps.Keys,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Primary)),
		help:         help.New(),
		router:       router.New(),
		sidebarOpen:  cfg.SidebarOpen,
		sidebarWidth: cfg.SidebarWidth,
	}
}

// Init restores the session before anything else is shown.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, msg.Restore(m.shell))
}

// Update handles messages and updates the model
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.help.Width = message.Width
		return m, nil

	case msg.RestoredMsg:
		if message.Authenticated {
			return m, m.enterMain()
		}
		return m, m.enterAuth()

	case msg.AuthResultMsg:
		if m.phase != phaseAuth {
			return m, nil
		}
		if message.Err != nil {
			m.logger.Warn("authentication failed", "register", message.Register, "error", message.Err.Error())
			m.auth.fail(message.Err)
			return m, nil
		}
		return m, m.enterMain()

	case msg.NavigateMsg:
		if m.phase != phaseMain {
			return m, nil
		}
		return m, m.navigate(message.View, message.CaseID)

	case tea.KeyMsg:
		return m.handleKey(message)

	case spinner.TickMsg:
		if m.phase == phaseLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(message)
			return m, cmd
		}
	}

	if s, ok := message.(msg.Stamped); ok && s.Generation() != m.gen {
		m.logger.Debug("dropped stale result", "generation", s.Generation(), "current", m.gen)
		return m, nil
	}
	return m, m.forward(message)
}

// forward hands a message to whichever component is showing.
func (m *Model) forward(message tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.phase {
	case phaseAuth:
		m.auth, cmd = m.auth.Update(message, m.shell)
	case phaseMain:
		if m.screen != nil {
			m.screen, cmd = m.screen.Update(message)
		}
	}
	return cmd
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.keys.Global

	if key.Matches(k, g.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.phase {
	case phaseLoading:
		return m, nil
	case phaseAuth:
		return m, m.forward(k)
	}

	switch {
	case key.Matches(k, g.ToggleSidebar):
		m.sidebarOpen = !m.sidebarOpen
		if !m.sidebarOpen {
			m.focusSidebar = false
		}
		return m, nil
	case key.Matches(k, g.Logout):
		return m, m.logout()
	case key.Matches(k, g.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(k, g.FocusSidebar):
		m.sidebarOpen = true
		m.focusSidebar = !m.focusSidebar
		return m, nil
	}

	if m.focusSidebar {
		return m.handleSidebarKey(k)
	}
	if !m.capturing() && key.Matches(k, m.keys.Sidebar.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, m.forward(k)
}

func (m Model) handleSidebarKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.keys.Sidebar
	switch {
	case key.Matches(k, s.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(k, s.Down):
		if m.menuCursor < logoutIndex {
			m.menuCursor++
		}
	case key.Matches(k, s.Select):
		if m.menuCursor == logoutIndex {
			return m, m.logout()
		}
		return m, m.navigate(router.MenuItems()[m.menuCursor].View, "")
	case key.Matches(k, s.Leave):
		m.focusSidebar = false
	case key.Matches(k, s.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// capturing reports whether the current screen has a focused text field.
func (m Model) capturing() bool {
	c, ok := m.screen.(screen.Capturer)
	return ok && c.CapturingInput()
}

// navigate replaces the current screen. The generation bump makes any result
// still in flight for the old screen stale.
func (m *Model) navigate(view router.ViewName, caseID string) tea.Cmd {
	m.router.Navigate(view)
	current := m.router.Current()
	if current != view {
		m.logger.Warn("unknown view, showing dashboard", "requested", string(view))
	}

	m.gen++
	m.caseID = caseID
	m.screen = screen.New(current, m.deps, m.gen, caseID)
	m.focusSidebar = false
	for i, item := range router.MenuItems() {
		if item.View == current {
			m.menuCursor = i
		}
	}
	m.logger.Debug("navigate", "view", string(current), "generation", m.gen)
	return m.screen.Init()
}

func (m *Model) enterMain() tea.Cmd {
	m.phase = phaseMain
	m.router.Reset()
	if s := m.shell.Current(); s != nil {
		m.logger = m.deps.Logger.WithUser(s.User.Email)
	}
	return m.navigate(router.Default, "")
}

func (m *Model) enterAuth() tea.Cmd {
	m.phase = phaseAuth
	m.auth = newAuthModel(m.keys.Content)
	return m.auth.Init()
}

// logout ends the session from any view and shows the sign-in card.
func (m *Model) logout() tea.Cmd {
	if m.phase != phaseMain {
		return nil
	}
	m.shell.Logout(context.Background())
	m.logger.Info("logged out")
	m.logger = m.deps.Logger

	m.gen++
	m.screen = nil
	m.caseID = ""
	m.router.Reset()
	m.focusSidebar = false
	m.menuCursor = 0
	return m.enterAuth()
}

// CurrentView returns the view being rendered. Unknown names resolve to the dashboard.
func (m Model) CurrentView() router.ViewName {
	return m.router.Current()
}

// Screen returns the current screen, or nil outside the main application.
func (m Model) Screen() screen.Screen {
	return m.screen
}

// Authenticated reports whether the main application is showing.
func (m Model) Authenticated() bool {
	return m.phase == phaseMain
}
