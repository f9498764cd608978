// Package screen implements the views of the main application.
//
// Every screen is an independent leaf: it fetches its own data when it becomes
// visible, keeps its own loading and error state and talks to the rest of the
// application only through the injected Deps and the messages in package msg.
// Results of background calls are stamped with the generation the screen was
// created for, so the root model can drop responses that arrive after the user
// moved on.
package screen

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/logging"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/session"
	"github.com/lexai-app/lexai/internal/store"
	"github.com/lexai-app/lexai/internal/tui/keymap"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

// DefaultRecentLimit is how many cases and conversations the dashboard lists.
const DefaultRecentLimit = 5

// API is the part of the backend client the screens use. *api.Client satisfies it.
type API interface {
	DashboardStats(ctx context.Context) (*api.DashboardStats, error)
	ListCases(ctx context.Context) ([]api.Case, error)
	CreateCase(ctx context.Context, nc api.NewCase) (*api.CaseCreated, error)
	GetCase(ctx context.Context, id string) (*api.Case, error)
	ChatHistory(ctx context.Context) ([]api.Conversation, error)
	SendMessage(ctx context.Context, req api.ChatRequest) (*api.ChatReply, error)
	GetConversation(ctx context.Context, id string) (*api.Conversation, error)
	LegalCategories(ctx context.Context) ([]api.Category, error)
	AnalyzeDocument(ctx context.Context, req api.AnalyzeRequest) (*api.Analysis, error)
}

// Deps is everything a screen may use. Screens read nothing else.
type Deps struct {
	API         API
	Shell       *session.Shell
	Store       store.Store
	Logger      *logging.Logger
	Keys        keymap.Keymap
	RecentLimit int

	// Now defaults to time.Now.
	Now func() time.Time
	// OpenFile defaults to OpenFile. The document analysis screen reads the
	// file to upload through it.
	OpenFile func(name string) (io.ReadCloser, error)
}

// Screen is one view of the main application.
type Screen interface {
	Init() tea.Cmd
	Update(tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
}

// Capturer is implemented by screens with a focused text field. While it
// reports true, the root model forwards printable keys instead of treating
// them as shortcuts.
type Capturer interface {
	CapturingInput() bool
}

// New builds the screen for view. Unknown names get the dashboard. caseID is
// only used by the case detail view.
func New(view router.ViewName, deps Deps, gen uint64, caseID string) Screen {
	deps = deps.withDefaults()
	base := base{
		deps:   deps,
		gen:    msg.Gen{N: gen},
		logger: deps.Logger.WithView(string(router.Resolve(view))),
	}

	switch router.Resolve(view) {
	case router.LegalCategories:
		return newCategories(base)
	case router.LegalChat:
		return newChat(base)
	case router.ChatHistory:
		return newHistory(base)
	case router.CasesDashboard:
		return newCases(base)
	case router.NewCase:
		return newCaseForm(base)
	case router.CaseDetail:
		return newCaseDetail(base, caseID)
	case router.DocumentAnalysis:
		return newAnalysis(base)
	case router.DocumentGenerator:
		return newGenerator(base)
	default:
		return newDashboard(base)
	}
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NopLogger()
	}
	if d.RecentLimit <= 0 {
		d.RecentLimit = DefaultRecentLimit
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.OpenFile == nil {
		d.OpenFile = OpenFile
	}
	return d
}

// base carries what every screen needs.
type base struct {
	deps   Deps
	gen    msg.Gen
	logger *logging.Logger
}

func (b base) ctx() context.Context {
	return context.Background()
}

// logReadFailure records a failed background fetch.
func (b base) logReadFailure(op string, err error) {
	b.logger.Warn("fetch failed", "op", op, "error", err.Error(), "status", errors.StatusOf(err))
}

// logWriteFailure records a failed user action.
func (b base) logWriteFailure(op string, err error) {
	b.logger.Error("action failed", "op", op, "error", err.Error(), "status", errors.StatusOf(err))
}

func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Primary),
	)
}

// header renders a page heading with its subtitle.
func header(title, subtitle string) string {
	return styles.Title.Render(title) + "\n" + styles.Subtitle.Render(subtitle) + "\n\n"
}

// errorLine renders the visible notice for a failed fetch or action.
func errorLine(what string, err error) string {
	return styles.ErrorMsg.Render("⚠ "+what) + " " + styles.Muted.Render("("+errors.Summary(err)+")")
}

// loadingLine renders a spinner with a caption.
func loadingLine(s spinner.Model, caption string) string {
	return s.View() + " " + styles.Muted.Render(caption)
}

// clip keeps at most height lines of content, starting offset lines from the top.
func clip(content string, height, offset int) string {
	if height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if offset > len(lines)-height {
		offset = len(lines) - height
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[offset:end], "\n")
}

// tail keeps the last height lines of content, scrolled back by offset lines.
func tail(content string, height, offset int) string {
	if height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	start := len(lines) - height - offset
	if start < 0 {
		start = 0
	}
	return clip(content, height, start)
}

// wrap fits text into width columns.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// tabs renders a filter bar with the active option highlighted.
func tabs(labels []string, active int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == active {
			parts[i] = styles.TabActive.Render(l)
		} else {
			parts[i] = styles.TabInactive.Render(l)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func cycle(i, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

// expandHome resolves a leading "~/" to the user's home directory.
func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
