package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

var caseFilters = []filterOption{
	{"", "Todos los estados"},
	{api.StatusActive, "Casos Activos"},
	{api.StatusClosed, "Casos Cerrados"},
}

type casesLoadedMsg struct {
	msg.Gen
	cases []api.Case
	err   error
}

// Cases lists the organization's cases with a status filter.
type Cases struct {
	base
	spinner spinner.Model
	loading bool
	cases   []api.Case
	err     error
	filter  int
	cursor  int
}

func newCases(b base) *Cases {
	return &Cases{base: b, spinner: newSpinner(), loading: true}
}

func (c *Cases) load() tea.Cmd {
	b := c.base
	return func() tea.Msg {
		cases, err := b.deps.API.ListCases(b.ctx())
		return casesLoadedMsg{Gen: b.gen, cases: cases, err: err}
	}
}

// Init fetches the cases.
func (c *Cases) Init() tea.Cmd {
	return tea.Batch(c.load(), c.spinner.Tick)
}

// Visible returns the cases that pass the status filter.
func (c *Cases) Visible() []api.Case {
	return filterCases(c.cases, caseFilters[c.filter].value)
}

func filterCases(cases []api.Case, status string) []api.Case {
	if status == "" {
		return cases
	}
	var out []api.Case
	for _, cs := range cases {
		if cs.Status == status {
			out = append(out, cs)
		}
	}
	return out
}

// SetFilter selects a status filter by value. Unknown values select all.
func (c *Cases) SetFilter(status string) {
	c.filter = 0
	for i, f := range caseFilters {
		if f.value == status {
			c.filter = i
		}
	}
	c.cursor = 0
}

// Update handles filtering and opening a case. With no visible cases, enter
// goes to the new case form.
func (c *Cases) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := c.deps.Keys.Content

	switch m := m.(type) {
	case casesLoadedMsg:
		c.loading = false
		c.cases, c.err = m.cases, m.err
		if m.err != nil {
			c.logReadFailure("list_cases", m.err)
		}
		return c, nil

	case spinner.TickMsg:
		if !c.loading {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(m)
		return c, cmd

	case tea.KeyMsg:
		visible := c.Visible()
		switch {
		case key.Matches(m, keys.Left):
			c.filter = cycle(c.filter, -1, len(caseFilters))
			c.cursor = 0
		case key.Matches(m, keys.Right):
			c.filter = cycle(c.filter, 1, len(caseFilters))
			c.cursor = 0
		case key.Matches(m, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(m, keys.Down):
			if c.cursor < len(visible)-1 {
				c.cursor++
			}
		case key.Matches(m, keys.Open):
			if c.loading {
				return c, nil
			}
			if len(visible) == 0 {
				return c, msg.Navigate(router.NewCase)
			}
			return c, msg.OpenCase(visible[c.cursor].ID)
		case key.Matches(m, keys.Reset):
			return c, msg.Navigate(router.NewCase)
		case key.Matches(m, keys.Refresh):
			c.loading = true
			return c, tea.Batch(c.load(), c.spinner.Tick)
		}
	}
	return c, nil
}

// View renders the case cards or the empty state.
func (c *Cases) View(width, height int) string {
	var b strings.Builder
	b.WriteString(header("Mis Casos Legales", "Gestiona todos tus casos de manera inteligente"))
	b.WriteString(tabs(filterLabels(caseFilters), c.filter))
	b.WriteString("\n\n")

	switch {
	case c.loading:
		b.WriteString(loadingLine(c.spinner, "Cargando casos..."))
		return b.String()
	case c.err != nil:
		b.WriteString(errorLine("No se pudieron cargar los casos", c.err))
		return b.String()
	}

	visible := c.Visible()
	if len(visible) == 0 {
		b.WriteString(styles.ContentBox.Render(
			"📁 " + styles.Bold.Render("No hay casos") + "\n" +
				styles.Muted.Render("Crea tu primer caso para comenzar") + "\n\n" +
				styles.ButtonFocused.Render("Crear Primer Caso"),
		))
		return b.String()
	}

	cardWidth := max(width-4, 20)
	var list strings.Builder
	cursorLine := 0
	for i, cs := range visible {
		if i == c.cursor {
			cursorLine = strings.Count(list.String(), "\n")
		}
		box := styles.ContentBox
		if i == c.cursor {
			box = styles.ContentBoxSelected
		}
		list.WriteString(box.Width(cardWidth).Render(renderCaseCard(cs)))
		list.WriteString("\n")
	}

	avail := height - strings.Count(b.String(), "\n")
	offset := 0
	if cursorLine > avail-8 {
		offset = cursorLine - avail + 8
	}
	b.WriteString(clip(list.String(), avail, offset))
	return b.String()
}

func renderCaseCard(cs api.Case) string {
	var b strings.Builder
	b.WriteString(styles.Bold.Render(cs.Title))
	b.WriteString("  ")
	b.WriteString(styles.Badge(cs.Status))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("Cliente: ") + cs.ClientName + "\n")
	b.WriteString(styles.Muted.Render("Tipo: ") + cs.CaseType + "   ")
	b.WriteString(styles.Muted.Render("Prioridad: ") + styles.Primary.Foreground(styles.PriorityColor(cs.Priority)).Render(cs.Priority) + "\n")
	if cs.Description != "" {
		b.WriteString(cs.Description + "\n")
	}
	b.WriteString(styles.Muted.Render("Creado: " + cs.CreatedAt.DateString()))
	return b.String()
}
