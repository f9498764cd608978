package msg

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/router"
)

// Restorer reads a persisted session.
type Restorer interface {
	Restore(ctx context.Context) bool
}

// Restore returns a command that restores the session off the event loop.
func Restore(r Restorer) tea.Cmd {
	return func() tea.Msg {
		return RestoredMsg{Authenticated: r.Restore(context.Background())}
	}
}

// Authenticator performs the two authentication calls.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, name, organizationName string) error
}

// Login returns a command that performs a single login attempt.
func Login(a Authenticator, email, password string) tea.Cmd {
	return func() tea.Msg {
		return AuthResultMsg{Err: a.Login(context.Background(), email, password)}
	}
}

// Register returns a command that performs a single registration attempt.
func Register(a Authenticator, email, password, name, organizationName string) tea.Cmd {
	return func() tea.Msg {
		err := a.Register(context.Background(), email, password, name, organizationName)
		return AuthResultMsg{Register: true, Err: err}
	}
}

// Navigate returns a command that requests a view change.
func Navigate(view router.ViewName) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{View: view}
	}
}

// OpenCase returns a command that shows the detail view for one case.
func OpenCase(id string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{View: router.CaseDetail, CaseID: id}
	}
}
