// Package config implements the interactive editor behind `lexai config edit`.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lexai-app/lexai/internal/config"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/logging"
	"github.com/lexai-app/lexai/internal/tui/styles"
	"github.com/spf13/viper"
)

// Setting kinds.
const (
	kindString = "string"
	kindInt    = "int"
	kindBool   = "bool"
	kindSelect = "select"
)

// Setting is one editable configuration key.
type Setting struct {
	Key         string
	Label       string
	Description string
	Kind        string
	Options     []string // kindSelect only
}

// Section groups the settings shown under one header.
type Section struct {
	Name     string
	Settings []Setting
}

// Sections returns the editable settings in display order.
func Sections() []Section {
	return []Section{
		{
			Name: "Backend",
			Settings: []Setting{
				{Key: "backend.url", Label: "URL", Description: "Base URL of the LexAI REST backend", Kind: kindString},
				{Key: "backend.timeout_seconds", Label: "Timeout (s)", Description: "Per-request timeout in seconds", Kind: kindInt},
			},
		},
		{
			Name: "Storage",
			Settings: []Setting{
				{Key: "storage.backend", Label: "Backend", Description: "Where the session token and user are kept between runs", Kind: kindSelect, Options: config.ValidStorageBackends()},
				{Key: "storage.dir", Label: "Directory", Description: "Directory for the file store and log (empty = data directory)", Kind: kindString},
				{Key: "storage.redis_url", Label: "Redis URL", Description: "Redis connection URL, used when the backend is redis", Kind: kindString},
				{Key: "storage.redis_prefix", Label: "Redis Prefix", Description: "Prefix added to every Redis key", Kind: kindString},
			},
		},
		{
			Name: "Interface",
			Settings: []Setting{
				{Key: "tui.sidebar_open", Label: "Sidebar Open", Description: "Start with the sidebar expanded", Kind: kindBool},
				{Key: "tui.sidebar_width", Label: "Sidebar Width", Description: "Width of the expanded sidebar in columns (20-60)", Kind: kindInt},
				{Key: "tui.recent_limit", Label: "Recent Items", Description: "Cases and conversations listed on the dashboard", Kind: kindInt},
			},
		},
		{
			Name: "Logging",
			Settings: []Setting{
				{Key: "logging.enabled", Label: "Enabled", Description: "Write a log file to the storage directory", Kind: kindBool},
				{Key: "logging.level", Label: "Level", Description: "Minimum level written to the log", Kind: kindSelect, Options: logging.ValidLevels()},
				{Key: "logging.max_size_mb", Label: "Max Size (MB)", Description: "Rotate the log after this many megabytes", Kind: kindInt},
				{Key: "logging.max_backups", Label: "Max Backups", Description: "Rotated log files to keep", Kind: kindInt},
			},
		},
	}
}

// defaultValue returns the built-in default for key.
func defaultValue(key string) (any, bool) {
	d := config.Default()
	values := map[string]any{
		"backend.url":             d.Backend.URL,
		"backend.timeout_seconds": d.Backend.TimeoutSeconds,
		"storage.backend":         d.Storage.Backend,
		"storage.dir":             d.Storage.Dir,
		"storage.redis_url":       d.Storage.RedisURL,
		"storage.redis_prefix":    d.Storage.RedisPrefix,
		"tui.sidebar_open":        d.TUI.SidebarOpen,
		"tui.sidebar_width":       d.TUI.SidebarWidth,
		"tui.recent_limit":        d.TUI.RecentLimit,
		"logging.enabled":         d.Logging.Enabled,
		"logging.level":           d.Logging.Level,
		"logging.max_size_mb":     d.Logging.MaxSizeMB,
		"logging.max_backups":     d.Logging.MaxBackups,
	}
	v, ok := values[key]
	return v, ok
}

type editorKeys struct {
	Up       key.Binding
	Down     key.Binding
	NextSect key.Binding
	PrevSect key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Edit     key.Binding
	Reset    key.Binding
	Quit     key.Binding
	Cancel   key.Binding
	Confirm  key.Binding
}

func defaultEditorKeys() editorKeys {
	return editorKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextSect: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next section")),
		PrevSect: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous section")),
		PageUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "page up")),
		PageDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "page down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Edit:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "edit")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	}
}

// Lines above and below the settings list: header, file path, description,
// messages and help.
const chromeLines = 12

// Model is the Bubbletea model for the config editor.
type Model struct {
	sections     []Section
	section      int
	index        int
	width        int
	height       int
	scrollOffset int

	keys      editorKeys
	editing   bool
	input     textinput.Model
	selectIdx int

	errorMsg string
	infoMsg  string
	saved    bool
	quitting bool
}

// New creates the editor over the current viper state.
func New() Model {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 44

	return Model{
		sections: Sections(),
		keys:     defaultEditorKeys(),
		input:    ti,
	}
}

// Saved reports whether any change was written to the config file.
func (m Model) Saved() bool {
	return m.saved
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureSelectionVisible(m.availableLines())
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		m.infoMsg = ""
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveBy(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveBy(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveBy(-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.moveBy(m.pageSize())
	case key.Matches(msg, m.keys.Top):
		m.section, m.index = 0, 0
	case key.Matches(msg, m.keys.Bottom):
		m.section = len(m.sections) - 1
		m.index = len(m.sections[m.section].Settings) - 1

	case key.Matches(msg, m.keys.NextSect):
		m.section = (m.section + 1) % len(m.sections)
		m.index = 0
	case key.Matches(msg, m.keys.PrevSect):
		m.section = (m.section - 1 + len(m.sections)) % len(m.sections)
		m.index = 0

	case key.Matches(msg, m.keys.Edit):
		s := m.current()
		switch s.Kind {
		case kindBool:
			m.apply(s, !viper.GetBool(s.Key))
		case kindSelect:
			m.editing = true
			m.selectIdx = max(slices.Index(s.Options, viper.GetString(s.Key)), 0)
		default:
			m.editing = true
			m.input.SetValue(displayValue(s))
			m.input.CursorEnd()
			return m, m.input.Focus()
		}

	case key.Matches(msg, m.keys.Reset):
		s := m.current()
		if v, ok := defaultValue(s.Key); ok {
			if m.apply(s, v) {
				m.infoMsg = fmt.Sprintf("Reset %s to default", s.Label)
			}
		}
	}

	m.ensureSelectionVisible(m.availableLines())
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.current()

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if s.Kind == kindSelect {
			m.apply(s, s.Options[m.selectIdx])
			m.stopEditing()
			return m, nil
		}
		v, err := parseValue(s, m.input.Value())
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		if m.apply(s, v) {
			m.stopEditing()
		}
		return m, nil
	}

	if s.Kind == kindSelect {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.selectIdx = (m.selectIdx - 1 + len(s.Options)) % len(s.Options)
		case key.Matches(msg, m.keys.Down):
			m.selectIdx = (m.selectIdx + 1) % len(s.Options)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

// apply sets key to v, rejects values that fail config validation and
// persists the result. It reports whether the value was kept.
func (m *Model) apply(s Setting, v any) bool {
	prev := viper.Get(s.Key)
	viper.Set(s.Key, v)

	if _, err := config.Load(); err != nil {
		viper.Set(s.Key, prev)
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				if e.Field == s.Key {
					m.errorMsg = fmt.Sprintf("%s %s", s.Label, e.Message)
					return false
				}
			}
		}
		m.errorMsg = err.Error()
		return false
	}

	if err := save(); err != nil {
		m.errorMsg = err.Error()
		return false
	}
	m.infoMsg = "Saved!"
	m.saved = true
	return true
}

func save() error {
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(config.ConfigFile()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func parseValue(s Setting, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch s.Kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected integer value")
		}
		if n < 0 {
			return nil, fmt.Errorf("value must be non-negative")
		}
		return n, nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected true or false")
		}
		return b, nil
	case kindSelect:
		if !slices.Contains(s.Options, raw) {
			return nil, fmt.Errorf("invalid option: %s", raw)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

func displayValue(s Setting) string {
	switch s.Kind {
	case kindBool:
		return strconv.FormatBool(viper.GetBool(s.Key))
	case kindInt:
		return strconv.Itoa(viper.GetInt(s.Key))
	default:
		return viper.GetString(s.Key)
	}
}

func (m Model) current() Setting {
	return m.sections[m.section].Settings[m.index]
}

// moveBy moves the selection n settings forward (or back when negative),
// crossing section boundaries and wrapping at either end for single steps.
func (m *Model) moveBy(n int) {
	flat := 0
	for i := range m.section {
		flat += len(m.sections[i].Settings)
	}
	flat += m.index

	total := 0
	for _, sec := range m.sections {
		total += len(sec.Settings)
	}

	switch {
	case n == 1 || n == -1:
		flat = (flat + n + total) % total
	default:
		flat = min(max(flat+n, 0), total-1)
	}

	for i, sec := range m.sections {
		if flat < len(sec.Settings) {
			m.section, m.index = i, flat
			return
		}
		flat -= len(sec.Settings)
	}
}

func (m Model) availableLines() int {
	return max(m.height-chromeLines, 5)
}

func (m Model) pageSize() int {
	return max(m.availableLines()/2, 1)
}

// totalLines counts the rendered list lines: a header, the settings and a
// blank line per section.
func (m Model) totalLines() int {
	n := 0
	for _, sec := range m.sections {
		n += len(sec.Settings) + 2
	}
	return n
}

// currentSelectionLine is the list line the selection renders on.
func (m Model) currentSelectionLine() int {
	line := 0
	for i := range m.section {
		line += len(m.sections[i].Settings) + 2
	}
	return line + 1 + m.index
}

func (m *Model) ensureSelectionVisible(available int) {
	line := m.currentSelectionLine()
	if line <= m.scrollOffset {
		// Keep the section header in view above its first setting.
		m.scrollOffset = line - 1
		if m.index > 0 {
			m.scrollOffset = line
		}
	}
	if line >= m.scrollOffset+available {
		m.scrollOffset = line - available + 1
	}
	m.scrollOffset = min(max(m.scrollOffset, 0), max(m.totalLines()-available, 0))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(styles.Header.Width(m.width - 4).Render("LexAI Configuration"))
	b.WriteString("\n")

	path := viper.ConfigFileUsed()
	if path == "" {
		path = config.ConfigFile() + " (not created)"
	}
	b.WriteString(styles.Muted.Render("Config file: " + path))
	b.WriteString("\n\n")

	lines := m.listLines()
	available := m.availableLines()
	start := min(m.scrollOffset, len(lines))
	end := min(start+available, len(lines))

	if start > 0 {
		b.WriteString(styles.Muted.Render("  ▲ more"))
	}
	b.WriteString("\n")
	for _, l := range lines[start:end] {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if end < len(lines) {
		b.WriteString(styles.Muted.Render("  ▼ more"))
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.renderEditor())
	} else {
		b.WriteString(styles.Muted.Render(m.current().Description))
	}
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.errorMsg))
		b.WriteString("\n")
	}
	if m.infoMsg != "" {
		b.WriteString(styles.SuccessMsg.Render(m.infoMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) listLines() []string {
	var lines []string
	for si, sec := range m.sections {
		header := styles.Muted.Bold(true)
		if si == m.section {
			header = styles.Primary.Bold(true)
		}
		lines = append(lines, header.Render(fmt.Sprintf("[ %s ]", sec.Name)))
		for ii, s := range sec.Settings {
			lines = append(lines, renderSetting(s, si == m.section && ii == m.index))
		}
		lines = append(lines, "")
	}
	return lines
}

func renderSetting(s Setting, selected bool) string {
	label := fmt.Sprintf("%-18s", s.Label)
	value := displayValue(s)
	if value == "" {
		value = "(empty)"
	}
	if selected {
		return fmt.Sprintf("  %s %s  %s",
			styles.Secondary.Render(">"),
			styles.Text.Bold(true).Render(label),
			styles.Primary.Render(value))
	}
	return fmt.Sprintf("    %s  %s", styles.Muted.Render(label), styles.Text.Render(value))
}

func (m Model) renderEditor() string {
	s := m.current()
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(0, 2).
		Width(52)

	var content strings.Builder
	if s.Kind == kindSelect {
		content.WriteString("Select " + s.Label + ":\n\n")
		for i, opt := range s.Options {
			if i == m.selectIdx {
				content.WriteString(styles.SidebarItemActive.Render("> "+opt) + "\n")
			} else {
				content.WriteString(styles.SidebarItem.Render("  "+opt) + "\n")
			}
		}
	} else {
		content.WriteString("Edit " + s.Label + ":\n\n")
		content.WriteString(m.input.View())
	}
	return box.Render(content.String())
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.NextSect, m.keys.Edit, m.keys.Reset, m.keys.Quit}
	if m.editing {
		bindings = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+h.Desc)
	}
	return styles.HelpBar.Render(strings.Join(parts, "  "))
}

// Run starts the interactive editor and reports whether anything was saved.
func Run() (bool, error) {
	final, err := tea.NewProgram(New(), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, _ := final.(Model)
	return m.Saved(), nil
}
