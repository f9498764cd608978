package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/store"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

type categoriesLoadedMsg struct {
	msg.Gen
	categories []api.Category
	err        error
}

type categoryPersistedMsg struct {
	msg.Gen
	err error
}

// Categories lets the user pick the legal area before chatting. The cursor
// moves over the categories and then the continue button, which stays
// disabled until a category is selected.
type Categories struct {
	base
	spinner    spinner.Model
	loading    bool
	categories []api.Category
	err        error
	persistErr error
	cursor     int
	selected   string
}

func newCategories(b base) *Categories {
	return &Categories{base: b, spinner: newSpinner(), loading: true}
}

func (c *Categories) load() tea.Cmd {
	b := c.base
	return func() tea.Msg {
		cats, err := b.deps.API.LegalCategories(b.ctx())
		return categoriesLoadedMsg{Gen: b.gen, categories: cats, err: err}
	}
}

// Init fetches the categories.
func (c *Categories) Init() tea.Cmd {
	return tea.Batch(c.load(), c.spinner.Tick)
}

// Selected returns the chosen category id, or "" when none is chosen.
func (c *Categories) Selected() string {
	return c.selected
}

// CanContinue reports whether the continue button is enabled.
func (c *Categories) CanContinue() bool {
	return c.selected != ""
}

func (c *Categories) onButton() bool {
	return c.cursor == len(c.categories)
}

// Update handles selection and the continue action.
func (c *Categories) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := c.deps.Keys.Content

	switch m := m.(type) {
	case categoriesLoadedMsg:
		c.loading = false
		c.categories, c.err = m.categories, m.err
		if m.err != nil {
			c.logReadFailure("legal_categories", m.err)
		}
		return c, nil

	case categoryPersistedMsg:
		if m.err != nil {
			c.persistErr = m.err
			c.logWriteFailure("persist_category", m.err)
			return c, nil
		}
		return c, msg.Navigate(router.LegalChat)

	case spinner.TickMsg:
		if !c.loading {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(m)
		return c, cmd

	case tea.KeyMsg:
		n := len(c.categories) + 1
		switch {
		case key.Matches(m, keys.Up), key.Matches(m, keys.Left):
			c.cursor = cycle(c.cursor, -1, n)
		case key.Matches(m, keys.Down), key.Matches(m, keys.Right), key.Matches(m, keys.NextField):
			c.cursor = cycle(c.cursor, 1, n)
		case key.Matches(m, keys.Submit):
			return c, c.proceed()
		case key.Matches(m, keys.Open), m.String() == " ":
			if c.onButton() {
				return c, c.proceed()
			}
			if c.cursor < len(c.categories) {
				c.selected = c.categories[c.cursor].ID
			}
		case key.Matches(m, keys.Refresh):
			c.loading = true
			return c, tea.Batch(c.load(), c.spinner.Tick)
		}
	}
	return c, nil
}

// proceed persists the selection and moves to the chat. It does nothing
// while no category is selected.
func (c *Categories) proceed() tea.Cmd {
	if !c.CanContinue() {
		return nil
	}
	b, selected := c.base, c.selected
	return func() tea.Msg {
		err := b.deps.Store.Set(b.ctx(), store.KeySelectedCategory, selected)
		return categoryPersistedMsg{Gen: b.gen, err: err}
	}
}

// View renders the category list.
func (c *Categories) View(width, height int) string {
	var b strings.Builder
	b.WriteString(header("¿Sobre qué tema legal necesitas ayuda?", "Selecciona una categoría para obtener respuestas más precisas"))

	switch {
	case c.loading:
		b.WriteString(loadingLine(c.spinner, "Cargando categorías..."))
		return b.String()
	case c.err != nil:
		b.WriteString(errorLine("No se pudieron cargar las categorías", c.err))
		b.WriteString("\n\n")
	}

	for i, cat := range c.categories {
		marker := "  "
		if cat.ID == c.selected {
			marker = "✓ "
		}
		body := marker + cat.Icon + " " + styles.Bold.Render(cat.Name) + "\n" + styles.Muted.Render("   "+cat.Description)
		box := styles.ContentBox
		if i == c.cursor {
			box = styles.ContentBoxSelected
		}
		b.WriteString(box.Width(max(width-4, 20)).Render(body))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	button := styles.ButtonDisabled
	if c.CanContinue() {
		button = styles.Button
		if c.onButton() {
			button = styles.ButtonFocused
		}
	}
	b.WriteString(button.Render("Continuar"))
	if c.persistErr != nil {
		b.WriteString("\n")
		b.WriteString(errorLine("No se pudo guardar la categoría", c.persistErr))
	}

	return tail(b.String(), height, 0)
}
