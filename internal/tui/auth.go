package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/tui/keymap"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

// Auth form fields in focus order. Name and organization only exist in
// register mode.
const (
	authName = iota
	authOrg
	authEmail
	authPassword
	authSubmit
	authToggle
	authFieldCount
)

// authModel is the sign-in / sign-up card shown while there is no session.
type authModel struct {
	keys     keymap.Content
	inputs   [4]textinput.Model
	spinner  spinner.Model
	register bool
	focus    int
	loading  bool
	errText  string
}

func newAuthModel(keys keymap.Content) authModel {
	a := authModel{keys: keys, spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Primary))}

	placeholders := [4]string{"Tu nombre", "Nombre de tu despacho", "tu@email.com", "••••••••"}
	for i := range a.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		ti.Width = 36
		a.inputs[i] = ti
	}
	a.inputs[authPassword].EchoMode = textinput.EchoPassword
	a.inputs[authPassword].EchoCharacter = '•'

	a.focus = authEmail
	a.inputs[authEmail].Focus()
	return a
}

func (a authModel) Init() tea.Cmd {
	return textinput.Blink
}

// values returns email, password, name and organization as typed.
func (a authModel) values() (email, password, name, org string) {
	return a.inputs[authEmail].Value(), a.inputs[authPassword].Value(),
		a.inputs[authName].Value(), a.inputs[authOrg].Value()
}

func (a authModel) firstField() int {
	if a.register {
		return authName
	}
	return authEmail
}

func (a *authModel) setFocus(i int) tea.Cmd {
	first := a.firstField()
	n := authFieldCount - first
	a.focus = first + cycle(i-first, n)

	for j := range a.inputs {
		a.inputs[j].Blur()
	}
	if a.focus < len(a.inputs) {
		return a.inputs[a.focus].Focus()
	}
	return nil
}

func cycle(i, n int) int {
	return ((i % n) + n) % n
}

// toggle switches between login and register. The error line is cleared.
func (a *authModel) toggle() tea.Cmd {
	a.register = !a.register
	a.errText = ""
	return a.setFocus(a.firstField())
}

// submit validates required fields and returns the authentication command.
func (a *authModel) submit(auth msg.Authenticator) tea.Cmd {
	if a.loading {
		return nil
	}
	email, password, name, org := a.values()
	if email == "" || password == "" || (a.register && (name == "" || org == "")) {
		a.errText = "Completa todos los campos"
		return nil
	}

	a.loading = true
	a.errText = ""
	if a.register {
		return tea.Batch(a.spinner.Tick, msg.Register(auth, email, password, name, org))
	}
	return tea.Batch(a.spinner.Tick, msg.Login(auth, email, password))
}

// fail shows the translated error and re-enables the form.
func (a *authModel) fail(err error) {
	a.loading = false
	a.errText = errors.UserMessage(err)
}

func (a authModel) Update(m tea.Msg, auth msg.Authenticator) (authModel, tea.Cmd) {
	switch m := m.(type) {
	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(m, a.keys.NextField), key.Matches(m, a.keys.Down):
			return a, a.setFocus(a.focus + 1)
		case key.Matches(m, a.keys.PrevField), key.Matches(m, a.keys.Up):
			return a, a.setFocus(a.focus - 1)
		case key.Matches(m, a.keys.Submit):
			return a, a.submit(auth)
		case key.Matches(m, a.keys.Open):
			switch {
			case a.focus == authToggle:
				return a, a.toggle()
			case a.focus == authPassword || a.focus == authSubmit:
				return a, a.submit(auth)
			default:
				return a, a.setFocus(a.focus + 1)
			}
		}
	}

	if a.focus < len(a.inputs) {
		var cmd tea.Cmd
		a.inputs[a.focus], cmd = a.inputs[a.focus].Update(m)
		return a, cmd
	}
	return a, nil
}

func (a authModel) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.Logo.Render("⚖  LexAI"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Plataforma Inteligente para Abogados"))
	b.WriteString("\n\n")

	field := func(i int, label string) {
		style := styles.FieldLabel
		if a.focus == i {
			style = styles.FieldLabelFocused
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		b.WriteString(a.inputs[i].View())
		b.WriteString("\n\n")
	}
	if a.register {
		field(authName, "Nombre Completo")
		field(authOrg, "Nombre del Despacho")
	}
	field(authEmail, "Email")
	field(authPassword, "Contraseña")

	if a.errText != "" {
		b.WriteString(styles.ErrorMsg.Render(a.errText))
		b.WriteString("\n\n")
	}

	label := "Iniciar Sesión"
	if a.register {
		label = "Crear Cuenta"
	}
	switch {
	case a.loading:
		b.WriteString(a.spinner.View() + " " + styles.ButtonDisabled.Render("Procesando..."))
	case a.focus == authSubmit:
		b.WriteString(styles.ButtonFocused.Render(label))
	default:
		b.WriteString(styles.Button.Render(label))
	}
	b.WriteString("\n\n")

	toggle := "¿No tienes cuenta? Regístrate"
	if a.register {
		toggle = "¿Ya tienes cuenta? Inicia sesión"
	}
	if a.focus == authToggle {
		b.WriteString(styles.Primary.Underline(true).Render(toggle))
	} else {
		b.WriteString(styles.Muted.Render(toggle))
	}

	card := styles.AuthBox.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
