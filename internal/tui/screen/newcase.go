package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

var caseTypes = []filterOption{
	{"", "Seleccionar tipo"},
	{"familia", "Derecho de Familia"},
	{"laboral", "Derecho Laboral"},
	{"civil", "Derecho Civil"},
	{"penal", "Derecho Penal"},
	{"mercantil", "Derecho Mercantil"},
	{"inmobiliario", "Derecho Inmobiliario"},
}

var priorities = []filterOption{
	{api.PriorityLow, "Baja"},
	{api.PriorityMedium, "Media"},
	{api.PriorityHigh, "Alta"},
}

// Form fields in focus order.
const (
	fieldTitle = iota
	fieldClient
	fieldType
	fieldPriority
	fieldDescription
	fieldSubmit
	fieldCount
)

type caseCreatedMsg struct {
	msg.Gen
	created *api.CaseCreated
	err     error
}

// CaseForm registers a new case. The form is submitted as typed.
type CaseForm struct {
	base
	spinner     spinner.Model
	title       textinput.Model
	client      textinput.Model
	description textarea.Model
	caseType    int
	priority    int
	focus       int
	submitting  bool
	err         error
}

func newCaseForm(b base) *CaseForm {
	title := textinput.New()
	title.Placeholder = "Ej: Divorcio de mutuo acuerdo"
	title.CharLimit = 200
	title.Focus()

	client := textinput.New()
	client.Placeholder = "Nombre del cliente"
	client.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Describe los detalles del caso..."
	desc.ShowLineNumbers = false
	desc.SetHeight(4)
	desc.SetWidth(60)

	return &CaseForm{
		base:        b,
		spinner:     newSpinner(),
		title:       title,
		client:      client,
		description: desc,
		priority:    1,
	}
}

// Init starts the cursor blinking.
func (f *CaseForm) Init() tea.Cmd {
	return textinput.Blink
}

// CapturingInput reports whether a text field has focus.
func (f *CaseForm) CapturingInput() bool {
	return f.focus == fieldTitle || f.focus == fieldClient || f.focus == fieldDescription
}

// Value returns the case as it would be submitted.
func (f *CaseForm) Value() api.NewCase {
	return api.NewCase{
		Title:       f.title.Value(),
		ClientName:  f.client.Value(),
		CaseType:    caseTypes[f.caseType].value,
		Description: f.description.Value(),
		Priority:    priorities[f.priority].value,
	}
}

// Update handles field focus, option cycling and submission.
func (f *CaseForm) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := f.deps.Keys.Content

	switch m := m.(type) {
	case caseCreatedMsg:
		f.submitting = false
		if m.err != nil {
			f.err = m.err
			f.logWriteFailure("create_case", m.err)
			return f, nil
		}
		f.logger.Info("case created", "case_id", m.created.CaseID)
		return f, msg.Navigate(router.CasesDashboard)

	case spinner.TickMsg:
		if !f.submitting {
			return f, nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(m)
		return f, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(m, keys.Submit):
			return f, f.submit()
		case key.Matches(m, keys.NextField):
			return f, f.setFocus(f.focus + 1)
		case key.Matches(m, keys.PrevField):
			return f, f.setFocus(f.focus - 1)
		}

		switch f.focus {
		case fieldType, fieldPriority:
			delta := 0
			switch {
			case key.Matches(m, keys.Left), key.Matches(m, keys.Up):
				delta = -1
			case key.Matches(m, keys.Right), key.Matches(m, keys.Down):
				delta = 1
			case key.Matches(m, keys.Open):
				return f, f.setFocus(f.focus + 1)
			}
			if f.focus == fieldType {
				f.caseType = cycle(f.caseType, delta, len(caseTypes))
			} else {
				f.priority = cycle(f.priority, delta, len(priorities))
			}
			return f, nil
		case fieldSubmit:
			if key.Matches(m, keys.Open) {
				return f, f.submit()
			}
			return f, nil
		case fieldTitle, fieldClient:
			if key.Matches(m, keys.Open) {
				return f, f.setFocus(f.focus + 1)
			}
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(m)
	case fieldClient:
		f.client, cmd = f.client.Update(m)
	case fieldDescription:
		f.description, cmd = f.description.Update(m)
	}
	return f, cmd
}

func (f *CaseForm) setFocus(i int) tea.Cmd {
	f.focus = cycle(i, 0, fieldCount)
	f.title.Blur()
	f.client.Blur()
	f.description.Blur()

	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldClient:
		return f.client.Focus()
	case fieldDescription:
		return f.description.Focus()
	}
	return nil
}

// missing lists the labels of empty required fields.
func (f *CaseForm) missing() []string {
	v := f.Value()
	var out []string
	if v.Title == "" {
		out = append(out, "Título")
	}
	if v.ClientName == "" {
		out = append(out, "Cliente")
	}
	if v.CaseType == "" {
		out = append(out, "Tipo de Caso")
	}
	if v.Description == "" {
		out = append(out, "Descripción")
	}
	return out
}

func (f *CaseForm) submit() tea.Cmd {
	if f.submitting {
		return nil
	}
	if missing := f.missing(); len(missing) > 0 {
		f.err = errors.NewValidationError("case", "Campos obligatorios: "+strings.Join(missing, ", "))
		return nil
	}

	f.submitting = true
	f.err = nil
	b, nc := f.base, f.Value()
	return tea.Batch(f.spinner.Tick, func() tea.Msg {
		created, err := b.deps.API.CreateCase(b.ctx(), nc)
		return caseCreatedMsg{Gen: b.gen, created: created, err: err}
	})
}

// View renders the form.
func (f *CaseForm) View(width, height int) string {
	var b strings.Builder
	b.WriteString(header("Registro de Nuevo Caso", "Ingresa la información del nuevo caso legal"))

	label := func(i int, text string) string {
		if f.focus == i {
			return styles.FieldLabelFocused.Render(text)
		}
		return styles.FieldLabel.Render(text)
	}
	option := func(i int, opts []filterOption, selected int) string {
		text := "‹ " + opts[selected].label + " ›"
		if f.focus == i {
			return styles.Primary.Render(text)
		}
		return text
	}

	b.WriteString(label(fieldTitle, "Título del Caso *") + "\n" + f.title.View() + "\n\n")
	b.WriteString(label(fieldClient, "Cliente *") + "\n" + f.client.View() + "\n\n")
	b.WriteString(label(fieldType, "Tipo de Caso *") + "\n" + option(fieldType, caseTypes, f.caseType) + "\n\n")
	b.WriteString(label(fieldPriority, "Prioridad") + "\n" + option(fieldPriority, priorities, f.priority) + "\n\n")
	b.WriteString(label(fieldDescription, "Descripción del Caso *") + "\n" + f.description.View() + "\n\n")

	switch {
	case f.submitting:
		b.WriteString(loadingLine(f.spinner, "Creando caso..."))
	case f.focus == fieldSubmit:
		b.WriteString(styles.ButtonFocused.Render("Crear Caso"))
	default:
		b.WriteString(styles.Button.Render("Crear Caso"))
	}

	if f.err != nil {
		b.WriteString("\n\n")
		var v *errors.ValidationError
		if errors.As(f.err, &v) {
			b.WriteString(styles.WarningMsg.Render(v.Message))
		} else {
			b.WriteString(errorLine("No se pudo crear el caso", f.err))
		}
	}

	return clip(b.String(), height, 0)
}
