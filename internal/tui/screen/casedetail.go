package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

type caseLoadedMsg struct {
	msg.Gen
	c   *api.Case
	err error
}

// CaseDetail shows one case. Without a case id it shows a placeholder.
type CaseDetail struct {
	base
	spinner spinner.Model
	id      string
	loading bool
	c       *api.Case
	err     error
}

func newCaseDetail(b base, id string) *CaseDetail {
	return &CaseDetail{base: b, spinner: newSpinner(), id: id, loading: id != ""}
}

// Init fetches the case when there is one to show.
func (d *CaseDetail) Init() tea.Cmd {
	if d.id == "" {
		return nil
	}
	b, id := d.base, d.id
	return tea.Batch(d.spinner.Tick, func() tea.Msg {
		c, err := b.deps.API.GetCase(b.ctx(), id)
		return caseLoadedMsg{Gen: b.gen, c: c, err: err}
	})
}

// Update handles the fetch result. Enter goes back to the case list.
func (d *CaseDetail) Update(m tea.Msg) (Screen, tea.Cmd) {
	switch m := m.(type) {
	case caseLoadedMsg:
		d.loading = false
		d.c, d.err = m.c, m.err
		if m.err != nil {
			d.logReadFailure("get_case", m.err)
		}
	case spinner.TickMsg:
		if !d.loading {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(m)
		return d, cmd
	case tea.KeyMsg:
		if key.Matches(m, d.deps.Keys.Content.Open) {
			return d, msg.Navigate(router.CasesDashboard)
		}
	}
	return d, nil
}

// View renders the case or the placeholder.
func (d *CaseDetail) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Detalle del Caso"))
	b.WriteString("\n")

	switch {
	case d.id == "":
		b.WriteString(styles.Muted.Render("Página de detalle del caso en desarrollo..."))
		b.WriteString("\n\n")
		b.WriteString(styles.Muted.Render("Selecciona un caso en Mis Casos para ver su detalle."))
		return b.String()
	case d.loading:
		b.WriteString(loadingLine(d.spinner, "Cargando caso..."))
		return b.String()
	case errors.Is(d.err, errors.ErrNotFound):
		b.WriteString(styles.WarningMsg.Render("Caso no encontrado"))
		return b.String()
	case d.err != nil:
		b.WriteString(errorLine("No se pudo cargar el caso", d.err))
		return b.String()
	case d.c == nil:
		return b.String()
	}

	c := d.c
	row := func(label, value string) string {
		return styles.FieldLabel.Render(label+": ") + value + "\n"
	}
	b.WriteString(styles.Bold.Render(c.Title) + "  " + styles.Badge(c.Status) + "\n\n")
	b.WriteString(row("Cliente", c.ClientName))
	b.WriteString(row("Tipo", c.CaseType))
	b.WriteString(row("Prioridad", styles.Primary.Foreground(styles.PriorityColor(c.Priority)).Render(c.Priority)))
	b.WriteString(row("Creado", c.CreatedAt.DateString()))
	b.WriteString(row("Actualizado", c.UpdatedAt.DateString()))
	b.WriteString("\n")
	b.WriteString(styles.SectionTitle.Render("Descripción"))
	b.WriteString("\n")
	b.WriteString(wrap(c.Description, width-2))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render("enter: volver a Mis Casos"))

	return clip(b.String(), height, 0)
}
