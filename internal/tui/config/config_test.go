package config

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/config"
	"github.com/spf13/viper"
)

// isolate gives each test default settings and a private config directory.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

// selectKey moves the selection to the setting with the given key.
func selectKey(t *testing.T, m Model, key string) Model {
	t.Helper()
	for si, sec := range m.sections {
		for ii, s := range sec.Settings {
			if s.Key == key {
				m.section, m.index = si, ii
				return m
			}
		}
	}
	t.Fatalf("no setting %q", key)
	return m
}

func TestSections_HaveDefaults(t *testing.T) {
	for _, sec := range Sections() {
		for _, s := range sec.Settings {
			if _, ok := defaultValue(s.Key); !ok {
				t.Errorf("setting %q has no default", s.Key)
			}
			if s.Kind == kindSelect && len(s.Options) == 0 {
				t.Errorf("select %q has no options", s.Key)
			}
		}
	}
}

func TestTotalLines(t *testing.T) {
	m := New()

	expected := 0
	for _, sec := range m.sections {
		expected += len(sec.Settings) + 2
	}
	if got := m.totalLines(); got != expected {
		t.Errorf("totalLines() = %d, want %d", got, expected)
	}
	if got := len(m.listLines()); got != expected {
		t.Errorf("listLines() has %d lines, want %d", got, expected)
	}
}

func TestCurrentSelectionLine(t *testing.T) {
	m := New()

	tests := []struct {
		name    string
		section int
		index   int
		want    int
	}{
		{"first setting", 0, 0, 1},
		{"second setting", 0, 1, 2},
		{"first setting of second section", 1, 0, len(m.sections[0].Settings) + 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.section, m.index = tt.section, tt.index
			if got := m.currentSelectionLine(); got != tt.want {
				t.Errorf("currentSelectionLine() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEnsureSelectionVisible(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		section   int
		index     int
		available int
	}{
		{"selection at top", 0, 0, 0, 10},
		{"selection below viewport", 0, 2, 0, 5},
		{"selection above viewport", 20, 0, 0, 10},
		{"last setting", 0, 3, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.scrollOffset = tt.offset
			m.section, m.index = tt.section, tt.index

			m.ensureSelectionVisible(tt.available)

			if m.scrollOffset < 0 {
				t.Fatalf("scrollOffset = %d, want non-negative", m.scrollOffset)
			}
			line := m.currentSelectionLine()
			if line < m.scrollOffset || line >= m.scrollOffset+tt.available {
				t.Errorf("selection line %d not in viewport [%d, %d)", line, m.scrollOffset, m.scrollOffset+tt.available)
			}
		})
	}
}

func TestNavigation_Wraps(t *testing.T) {
	m := New()
	m.width, m.height = 80, 40

	m = press(m, runes("k"))
	last := len(m.sections) - 1
	if m.section != last || m.index != len(m.sections[last].Settings)-1 {
		t.Fatalf("k from the top selected %d/%d, want the last setting", m.section, m.index)
	}
	m = press(m, runes("j"))
	if m.section != 0 || m.index != 0 {
		t.Errorf("j from the bottom selected %d/%d, want the first setting", m.section, m.index)
	}

	m = press(m, runes("j"))
	m = press(m, runes("j"))
	if m.section != 1 || m.index != 0 {
		t.Errorf("j should cross into the next section, got %d/%d", m.section, m.index)
	}

	m = press(m, keyTab)
	if m.section != 2 || m.index != 0 {
		t.Errorf("tab selected %d/%d, want 2/0", m.section, m.index)
	}
}

func TestNavigation_Scrolls(t *testing.T) {
	m := New()
	m.width, m.height = 80, 17

	for range 12 {
		m = press(m, runes("j"))
	}
	if m.scrollOffset == 0 {
		t.Error("scrollOffset should move when navigating down")
	}
	for range 12 {
		m = press(m, runes("k"))
	}
	if m.scrollOffset != 0 {
		t.Errorf("scrollOffset = %d back at the top, want 0", m.scrollOffset)
	}
}

func TestPageAndJumps(t *testing.T) {
	m := New()
	m.width, m.height = 80, 20

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.section == 0 && m.index == 0 {
		t.Error("page down should move the selection")
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlU})
	if m.section != 0 || m.index != 0 {
		t.Errorf("page up should return to the start, got %d/%d", m.section, m.index)
	}

	m = press(m, runes("G"))
	last := len(m.sections) - 1
	if m.section != last || m.index != len(m.sections[last].Settings)-1 {
		t.Errorf("G selected %d/%d", m.section, m.index)
	}
	m = press(m, runes("g"))
	if m.section != 0 || m.index != 0 {
		t.Errorf("g selected %d/%d", m.section, m.index)
	}
}

func TestView_ScrollIndicators(t *testing.T) {
	isolate(t)
	m := New()
	m.width, m.height = 80, 15

	view := m.View()
	if strings.Contains(view, "▲") {
		t.Error("no up arrow at the top")
	}
	if !strings.Contains(view, "▼") {
		t.Error("down arrow expected with content below")
	}
	if !strings.Contains(view, "LexAI Configuration") || !strings.Contains(view, "(not created)") {
		t.Error("header should name the missing config file")
	}

	m = press(m, runes("G"))
	view = m.View()
	if !strings.Contains(view, "▲") {
		t.Error("up arrow expected at the bottom")
	}
}

func TestWindowResizeKeepsSelection(t *testing.T) {
	m := New()
	m.width, m.height = 80, 50
	m.section = len(m.sections) - 1
	m.index = len(m.sections[m.section].Settings) - 1

	m = press(m, runes("j"))
	m = press(m, runes("G"))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 15})
	m = next.(Model)

	line := m.currentSelectionLine()
	if line < m.scrollOffset || line >= m.scrollOffset+m.availableLines() {
		t.Error("selection should stay visible after a resize")
	}
}

func TestToggleBool_Saves(t *testing.T) {
	isolate(t)
	m := selectKey(t, New(), "tui.sidebar_open")

	m = press(m, keyEnter)
	if viper.GetBool("tui.sidebar_open") {
		t.Fatal("enter should toggle the sidebar off")
	}
	if !m.Saved() || m.infoMsg != "Saved!" {
		t.Errorf("Saved() = %v, infoMsg = %q", m.Saved(), m.infoMsg)
	}
	data, err := os.ReadFile(config.ConfigFile())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "sidebar_open: false") {
		t.Errorf("config file:\n%s", data)
	}
}

func TestEditInt(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr string
	}{
		{"valid", "40", 40, ""},
		{"not a number", "ancho", 28, "expected integer value"},
		{"negative", "-3", 28, "non-negative"},
		{"below minimum", "10", 28, "Sidebar Width must be at least 20 columns"},
		{"above maximum", "90", 28, "Sidebar Width exceeds maximum of 60 columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			m := selectKey(t, New(), "tui.sidebar_width")

			m = press(m, keyEnter)
			if !m.editing || m.input.Value() != "28" {
				t.Fatalf("editing = %v, input = %q", m.editing, m.input.Value())
			}
			m.input.SetValue(tt.value)
			m = press(m, keyEnter)

			if got := viper.GetInt("tui.sidebar_width"); got != tt.want {
				t.Errorf("sidebar_width = %d, want %d", got, tt.want)
			}
			if tt.wantErr == "" {
				if m.editing || m.errorMsg != "" {
					t.Errorf("editing = %v, errorMsg = %q", m.editing, m.errorMsg)
				}
				return
			}
			if !m.editing {
				t.Error("an invalid value should keep the editor open")
			}
			if !strings.Contains(m.errorMsg, tt.wantErr) {
				t.Errorf("errorMsg = %q, want %q", m.errorMsg, tt.wantErr)
			}
			if m.Saved() {
				t.Error("nothing should be saved")
			}
		})
	}
}

func TestEditSelect(t *testing.T) {
	isolate(t)
	m := selectKey(t, New(), "storage.backend")

	m = press(m, keyEnter)
	if !m.editing || m.current().Options[m.selectIdx] != config.StorageFile {
		t.Fatalf("select should open on the current value, got %d", m.selectIdx)
	}
	m = press(m, runes("j"))
	m = press(m, keyEnter)

	if got := viper.GetString("storage.backend"); got != config.StorageMemory {
		t.Errorf("storage.backend = %q, want %q", got, config.StorageMemory)
	}
	if m.editing {
		t.Error("enter should close the selector")
	}
}

func TestEditCancel(t *testing.T) {
	isolate(t)
	m := selectKey(t, New(), "backend.url")

	m = press(m, keyEnter)
	m.input.SetValue("http://otro:9000")
	m = press(m, keyEsc)

	if m.editing {
		t.Error("esc should close the editor")
	}
	if got := viper.GetString("backend.url"); got != config.Default().Backend.URL {
		t.Errorf("backend.url = %q after cancel", got)
	}
}

func TestReset(t *testing.T) {
	isolate(t)
	viper.Set("tui.recent_limit", 9)
	m := selectKey(t, New(), "tui.recent_limit")

	m = press(m, runes("r"))
	if got := viper.GetInt("tui.recent_limit"); got != config.Default().TUI.RecentLimit {
		t.Errorf("recent_limit = %d after reset", got)
	}
	if !strings.Contains(m.infoMsg, "Reset Recent Items") {
		t.Errorf("infoMsg = %q", m.infoMsg)
	}
}

func TestQuit(t *testing.T) {
	m := New()
	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
	if next.(Model).View() != "" {
		t.Error("view should be empty after quitting")
	}
}
