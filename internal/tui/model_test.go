package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/config"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/session"
	"github.com/lexai-app/lexai/internal/store"
	"github.com/lexai-app/lexai/internal/testutil"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/screen"
)

type testEnv struct {
	backend *testutil.Backend
	store   *store.MemoryStore
	token   string
}

func newTestModel(t *testing.T, signedIn bool) (Model, *testEnv) {
	t.Helper()
	env := &testEnv{backend: testutil.NewBackend(t), store: store.NewMemoryStore()}
	env.token = env.backend.AddUser("ana@bufete.es", "secreto", "Ana", "Bufete A")

	if signedIn {
		ctx := context.Background()
		if err := env.store.Set(ctx, store.KeyToken, env.token); err != nil {
			t.Fatal(err)
		}
		if err := env.store.Set(ctx, store.KeyUser, `{"email":"ana@bufete.es","name":"Ana","organization":"Bufete A"}`); err != nil {
			t.Fatal(err)
		}
	}

	shell := session.NewShell(env.store, nil)
	client := api.New(env.backend.URL(), api.WithTokenSource(shell))
	shell.SetAuthenticator(client)

	m := NewModel(screen.Deps{API: client, Shell: shell, Store: env.store}, config.Default().TUI)
	m.width, m.height = 140, 50
	return m, env
}

// run feeds the messages produced by cmd to the model until done reports true.
func run(t *testing.T, m Model, cmd tea.Cmd, done func(Model) bool) Model {
	t.Helper()
	return testutil.Loop(t, m, cmd, func(m Model, message tea.Msg) (Model, tea.Cmd) {
		next, cmd := m.Update(message)
		return next.(Model), cmd
	}, done)
}

func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func typeText(m Model, text string) Model {
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func started(t *testing.T, signedIn bool) (Model, *testEnv) {
	t.Helper()
	m, env := newTestModel(t, signedIn)
	m = run(t, m, m.Init(), func(m Model) bool { return m.phase != phaseLoading })
	return m, env
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_StartsLoading(t *testing.T) {
	m, _ := newTestModel(t, true)
	if m.phase != phaseLoading {
		t.Fatalf("phase = %d, want loading", m.phase)
	}
	if !strings.Contains(m.View(), "Cargando LexAI...") {
		t.Error("loading frame should be shown before the session is restored")
	}
}

func TestModel_RestoredSession(t *testing.T) {
	m, env := started(t, true)

	if !m.Authenticated() {
		t.Fatal("a stored session should open the main application")
	}
	if m.CurrentView() != router.Dashboard {
		t.Errorf("CurrentView() = %q, want dashboard", m.CurrentView())
	}

	view := m.View()
	for _, want := range []string{"Ana", "Bufete A", "Cerrar Sesión", "Panel de Control"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}
	if env.backend.Calls("POST /api/auth/login") != 0 {
		t.Error("restoring must not log in again")
	}
}

func TestModel_NoSessionShowsAuth(t *testing.T) {
	m, _ := started(t, false)

	if m.Authenticated() {
		t.Fatal("without a stored session the auth card should be shown")
	}
	if m.Screen() != nil {
		t.Error("no screen should exist before sign-in")
	}
	if !strings.Contains(m.View(), "Iniciar Sesión") {
		t.Error("auth card missing")
	}
}

func TestModel_LoginFailure(t *testing.T) {
	m, env := started(t, false)

	m = typeText(m, "ana@bufete.es")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "incorrecta")
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.auth.loading {
		t.Fatal("submit should show the busy state")
	}
	m = run(t, m, cmd, func(m Model) bool { return !m.auth.loading })

	if m.Authenticated() {
		t.Fatal("a rejected login must not sign in")
	}
	if m.auth.errText != "Credenciales inválidas" {
		t.Errorf("errText = %q", m.auth.errText)
	}
	if !strings.Contains(m.View(), "Credenciales inválidas") {
		t.Error("the error should be visible")
	}
	if _, err := env.store.Get(context.Background(), store.KeyToken); !errors.Is(err, store.ErrNotFound) {
		t.Error("nothing should be persisted after a failed login")
	}
}

func TestModel_LoginSuccess(t *testing.T) {
	m, env := started(t, false)

	m = typeText(m, "ana@bufete.es")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "secreto")
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd, func(m Model) bool { return m.Authenticated() })

	if m.CurrentView() != router.Dashboard {
		t.Errorf("CurrentView() = %q, want dashboard", m.CurrentView())
	}
	if tok, err := env.store.Get(context.Background(), store.KeyToken); err != nil || tok == "" {
		t.Errorf("token not persisted: %q, %v", tok, err)
	}
}

func TestModel_AuthRequiresAllFields(t *testing.T) {
	m, env := started(t, false)

	// Switch to register mode through the toggle link.
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.auth.focus != authToggle {
		t.Fatalf("focus = %d, want the toggle", m.auth.focus)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.auth.register || m.auth.focus != authName {
		t.Fatalf("register = %v, focus = %d", m.auth.register, m.auth.focus)
	}

	m = typeText(m, "Ana")
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("an incomplete form must not be submitted")
	}
	if m.auth.errText != "Completa todos los campos" {
		t.Errorf("errText = %q", m.auth.errText)
	}
	if env.backend.TotalCalls() != 0 {
		t.Error("no request should be made")
	}
}

func TestModel_UnknownViewRendersDashboard(t *testing.T) {
	m, _ := started(t, true)

	next, _ := m.Update(msg.NavigateMsg{View: "no-existe"})
	m = next.(Model)

	if m.CurrentView() != router.Dashboard {
		t.Errorf("CurrentView() = %q, want dashboard", m.CurrentView())
	}
	if _, ok := m.Screen().(*screen.Dashboard); !ok {
		t.Errorf("screen is %T, want the dashboard", m.Screen())
	}
}

func TestModel_LogoutFromAnyView(t *testing.T) {
	for _, view := range router.All() {
		t.Run(string(view), func(t *testing.T) {
			m, env := started(t, true)
			next, _ := m.Update(msg.NavigateMsg{View: view})
			m = next.(Model)
			if m.CurrentView() != view {
				t.Fatalf("CurrentView() = %q, want %q", m.CurrentView(), view)
			}

			m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlL})

			if m.Authenticated() {
				t.Fatal("ctrl+l should sign out")
			}
			if m.CurrentView() != router.Dashboard {
				t.Errorf("router should be reset, got %q", m.CurrentView())
			}
			for _, key := range []string{store.KeyToken, store.KeyUser} {
				if _, err := env.store.Get(context.Background(), key); !errors.Is(err, store.ErrNotFound) {
					t.Errorf("%s still stored", key)
				}
			}
			if !strings.Contains(m.View(), "Iniciar Sesión") {
				t.Error("auth card should be shown after logout")
			}
		})
	}
}

func TestModel_DropsStaleResults(t *testing.T) {
	m, _ := started(t, true)

	// Navigate twice without letting the first screen's fetch land.
	next, staleCmd := m.Update(msg.NavigateMsg{View: router.Dashboard})
	m = next.(Model)
	next, _ = m.Update(msg.NavigateMsg{View: router.Dashboard})
	m = next.(Model)

	for _, message := range collect(staleCmd) {
		if s, ok := message.(msg.Stamped); ok && s.Generation() == m.gen {
			t.Fatalf("stale message carries the current generation %d", m.gen)
		}
		next, _ = m.Update(message)
		m = next.(Model)
	}

	if !strings.Contains(m.View(), "Cargando panel...") {
		t.Error("a result for a replaced screen must not reach the new one")
	}
}

// collect runs cmd and any batched commands it produces, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	message := cmd()
	if batch, ok := message.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{message}
}

func TestModel_SidebarNavigation(t *testing.T) {
	m, _ := started(t, true)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.focusSidebar {
		t.Fatal("esc should focus the sidebar")
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.CurrentView() != router.LegalCategories {
		t.Errorf("CurrentView() = %q, want %q", m.CurrentView(), router.LegalCategories)
	}
	if m.focusSidebar {
		t.Error("choosing a view should return focus to the content")
	}

	// The row after the menu items signs out.
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	for range logoutIndex + 2 {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.menuCursor != logoutIndex {
		t.Fatalf("menuCursor = %d, want %d", m.menuCursor, logoutIndex)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Authenticated() {
		t.Error("the logout row should sign out")
	}
}

func TestModel_ToggleSidebar(t *testing.T) {
	m, _ := started(t, true)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	if m.sidebarOpen {
		t.Fatal("ctrl+b should collapse the sidebar")
	}
	view := m.View()
	if strings.Contains(view, "Cerrar Sesión") || !strings.Contains(view, "🚪") {
		t.Error("collapsed sidebar should show icons only")
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	if !m.sidebarOpen || !strings.Contains(m.View(), "Cerrar Sesión") {
		t.Error("ctrl+b should expand the sidebar again")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := started(t, true)

	if _, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); !isQuit(cmd) {
		t.Error("q should quit when no field has focus")
	}

	next, _ := m.Update(msg.NavigateMsg{View: router.LegalChat})
	chat := next.(Model)
	if _, cmd := press(chat, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); isQuit(cmd) {
		t.Error("q should be typed into the chat input")
	}

	if _, cmd := press(chat, tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(cmd) {
		t.Error("ctrl+c should always quit")
	}
}

func TestSidebarWidth(t *testing.T) {
	tests := []struct {
		name       string
		termWidth  int
		configured int
		open       bool
		want       int
	}{
		{"default", 120, 0, true, SidebarWidth},
		{"configured", 120, 40, true, 40},
		{"narrow terminal", 70, 28, true, SidebarMinWidth},
		{"collapsed", 120, 28, false, SidebarCollapsedWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sidebarWidth(tt.termWidth, tt.configured, tt.open); got != tt.want {
				t.Errorf("sidebarWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContentDimensions(t *testing.T) {
	w, h := contentDimensions(120, 40, 28)
	if w != 120-28-PanelGap || h != 40-TopBarHeight-HelpBarHeight {
		t.Errorf("contentDimensions() = %d, %d", w, h)
	}

	w, h = contentDimensions(10, 2, 28)
	if w != 10 || h != 3 {
		t.Errorf("tiny terminal = %d, %d, want minimums", w, h)
	}
}
