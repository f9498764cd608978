package screen

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
	"github.com/lexai-app/lexai/internal/util"
	"github.com/sourcegraph/conc"
)

// quickAction is a shortcut on the dashboard.
type quickAction struct {
	icon  string
	title string
	desc  string
	view  router.ViewName
}

var quickActions = []quickAction{
	{"🤖", "Consultar IA Legal", "Haz una consulta al asistente", router.LegalCategories},
	{"📁", "Nuevo Caso", "Registra un caso nuevo", router.NewCase},
	{"📄", "Analizar Documento", "Sube un documento para análisis", router.DocumentAnalysis},
	{"📝", "Generar Documento", "Crea documentos legales", router.DocumentGenerator},
	{"📋", "Ver todos los casos", "Casos Recientes", router.CasesDashboard},
	{"💬", "Ver todas las consultas", "Consultas Recientes", router.ChatHistory},
}

// DashboardData is the joined result of the three dashboard fetches. Each
// section keeps its own error so a failure in one never hides the others.
type DashboardData struct {
	Stats    *api.DashboardStats
	StatsErr error

	Cases    []api.Case
	CasesErr error

	Conversations    []api.Conversation
	ConversationsErr error
}

type dashboardLoadedMsg struct {
	msg.Gen
	data DashboardData
}

// LoadDashboard runs the stats, cases and history fetches concurrently and
// returns once all three have finished.
func LoadDashboard(ctx context.Context, client API) DashboardData {
	var data DashboardData

	var wg conc.WaitGroup
	wg.Go(func() {
		data.Stats, data.StatsErr = client.DashboardStats(ctx)
	})
	wg.Go(func() {
		data.Cases, data.CasesErr = client.ListCases(ctx)
	})
	wg.Go(func() {
		data.Conversations, data.ConversationsErr = client.ChatHistory(ctx)
	})
	wg.Wait()

	return data
}

// Dashboard is the landing view: counters, recent items and quick actions.
type Dashboard struct {
	base
	spinner spinner.Model
	loading bool
	data    DashboardData
	cursor  int
}

func newDashboard(b base) *Dashboard {
	return &Dashboard{base: b, spinner: newSpinner(), loading: true}
}

func (d *Dashboard) load() tea.Cmd {
	b := d.base
	return func() tea.Msg {
		return dashboardLoadedMsg{Gen: b.gen, data: LoadDashboard(b.ctx(), b.deps.API)}
	}
}

// Init starts the joined fetch.
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.load(), d.spinner.Tick)
}

// Update handles the fetch result and quick action keys.
func (d *Dashboard) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := d.deps.Keys.Content

	switch m := m.(type) {
	case dashboardLoadedMsg:
		d.loading = false
		d.data = m.data
		if m.data.StatsErr != nil {
			d.logReadFailure("dashboard_stats", m.data.StatsErr)
		}
		if m.data.CasesErr != nil {
			d.logReadFailure("list_cases", m.data.CasesErr)
		}
		if m.data.ConversationsErr != nil {
			d.logReadFailure("chat_history", m.data.ConversationsErr)
		}
		return d, nil

	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(m)
		return d, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(m, keys.Up), key.Matches(m, keys.Left):
			d.cursor = cycle(d.cursor, -1, len(quickActions))
		case key.Matches(m, keys.Down), key.Matches(m, keys.Right):
			d.cursor = cycle(d.cursor, 1, len(quickActions))
		case key.Matches(m, keys.Open):
			return d, msg.Navigate(quickActions[d.cursor].view)
		case key.Matches(m, keys.Refresh):
			d.loading = true
			return d, tea.Batch(d.load(), d.spinner.Tick)
		}
	}
	return d, nil
}

// View renders the dashboard.
func (d *Dashboard) View(width, height int) string {
	var b strings.Builder

	welcome := "Bienvenido a LexAI"
	if d.deps.Shell != nil {
		if s := d.deps.Shell.Current(); s != nil && s.User.Name != "" {
			welcome = "Bienvenido, " + s.User.Name
		}
	}
	b.WriteString(header(welcome, "Tu asistente legal inteligente y gestor de casos"))

	if d.loading {
		b.WriteString(loadingLine(d.spinner, "Cargando panel..."))
		return b.String()
	}

	b.WriteString(d.renderStats())
	b.WriteString("\n\n")

	b.WriteString(styles.SectionTitle.Render("Accesos Rápidos"))
	b.WriteString("\n")
	for i, a := range quickActions {
		line := fmt.Sprintf("%s %s  %s", a.icon, a.title, styles.Muted.Render(a.desc))
		if i == d.cursor {
			b.WriteString(styles.SidebarItemActive.Render("▸ " + a.icon + " " + a.title))
		} else {
			b.WriteString(styles.SidebarItem.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	half := width/2 - 2
	if half < 20 {
		half = width
	}
	recent := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(d.renderRecentCases(half)),
		"  ",
		lipgloss.NewStyle().Width(half).Render(d.renderRecentConversations(half)),
	)
	if half == width {
		recent = d.renderRecentCases(width) + "\n\n" + d.renderRecentConversations(width)
	}
	b.WriteString(recent)

	return clip(b.String(), height, 0)
}

func (d *Dashboard) renderStats() string {
	if d.data.StatsErr != nil {
		return errorLine("No se pudieron cargar las estadísticas", d.data.StatsErr)
	}
	s := d.data.Stats
	if s == nil {
		s = &api.DashboardStats{}
	}

	card := func(value int, label string) string {
		return styles.StatCard.Render(styles.StatValue.Render(fmt.Sprint(value)) + "\n" + styles.Muted.Render(label))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		card(s.TotalCases, "Total Casos"),
		card(s.ActiveCases, "Casos Activos"),
		card(s.TotalConversations, "Consultas IA"),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		card(s.PendingTasks, "Tareas Pendientes"),
		card(s.ClosedCases, "Casos Cerrados"),
		card(s.UpcomingDeadlines, "Próximos Vencimientos"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (d *Dashboard) renderRecentCases(width int) string {
	var b strings.Builder
	b.WriteString(styles.SectionTitle.Render("Casos Recientes"))
	b.WriteString("\n")

	if d.data.CasesErr != nil {
		b.WriteString(errorLine("No se pudieron cargar los casos", d.data.CasesErr))
		return b.String()
	}
	if len(d.data.Cases) == 0 {
		b.WriteString(styles.Muted.Render("Sin casos todavía"))
		return b.String()
	}

	for i, c := range d.data.Cases {
		if i >= d.deps.RecentLimit {
			break
		}
		b.WriteString(util.TruncateANSI(styles.Bold.Render(c.Title)+" "+styles.Badge(c.Status), width))
		b.WriteString("\n")
		b.WriteString(util.TruncateANSI(styles.Muted.Render("  "+c.ClientName), width))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dashboard) renderRecentConversations(width int) string {
	var b strings.Builder
	b.WriteString(styles.SectionTitle.Render("Consultas Recientes"))
	b.WriteString("\n")

	if d.data.ConversationsErr != nil {
		b.WriteString(errorLine("No se pudieron cargar las consultas", d.data.ConversationsErr))
		return b.String()
	}
	if len(d.data.Conversations) == 0 {
		b.WriteString(styles.Muted.Render("Sin consultas todavía"))
		return b.String()
	}

	for i, c := range d.data.Conversations {
		if i >= d.deps.RecentLimit {
			break
		}
		b.WriteString(util.TruncateANSI(styles.Bold.Render(util.CategoryLabel(c.Category))+"  "+styles.Muted.Render(c.CreatedAt.DateString()), width))
		b.WriteString("\n")
		b.WriteString(util.TruncateANSI("  "+conversationPreview(c, 50), width))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// conversationPreview is the first message cut to n runes, or "Sin mensajes".
func conversationPreview(c api.Conversation, n int) string {
	if len(c.Messages) == 0 {
		return "Sin mensajes"
	}
	return util.Preview(c.FirstMessage(), n)
}
