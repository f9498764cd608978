package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/document"
	"github.com/lexai-app/lexai/internal/tui/styles"
)

// Generator fields in focus order.
const (
	genType = iota
	genParteA
	genParteB
	genImporte
	genFecha
	genButton
	genCount
)

// Generator drafts legal documents locally. Nothing is sent to the backend.
type Generator struct {
	base
	types   []document.Type
	typeIdx int // 0 is "no type selected"
	inputs  [4]textinput.Model
	focus   int
	doc     *document.Document
	err     error
	scroll  int
}

func newGenerator(b base) *Generator {
	g := &Generator{base: b, types: document.Types()}
	placeholders := [4]string{"Nombre completo", "Nombre completo", "Ej: 150.000 €", "AAAA-MM-DD"}
	for i := range g.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		g.inputs[i] = ti
	}
	return g
}

// Init does nothing; the generator needs no data.
func (g *Generator) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether a text field has focus.
func (g *Generator) CapturingInput() bool {
	return g.doc == nil && g.focus >= genParteA && g.focus <= genFecha
}

// SelectedType returns the chosen document type, if any.
func (g *Generator) SelectedType() (document.Type, bool) {
	if g.typeIdx == 0 {
		return document.Type{}, false
	}
	return g.types[g.typeIdx-1], true
}

// Fields returns the form as typed.
func (g *Generator) Fields() document.Fields {
	return document.Fields{
		ParteA:  g.inputs[0].Value(),
		ParteB:  g.inputs[1].Value(),
		Importe: g.inputs[2].Value(),
		Fecha:   g.inputs[3].Value(),
	}
}

// Document returns the last generated draft, or nil.
func (g *Generator) Document() *document.Document {
	return g.doc
}

// Update handles the form and the preview.
func (g *Generator) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := g.deps.Keys.Content

	km, ok := m.(tea.KeyMsg)
	if !ok {
		if g.CapturingInput() {
			return g, g.updateInput(m)
		}
		return g, nil
	}

	if g.doc != nil {
		switch {
		case key.Matches(km, keys.Reset), key.Matches(km, keys.Open):
			g.doc, g.scroll = nil, 0
		case key.Matches(km, keys.Up):
			if g.scroll > 0 {
				g.scroll--
			}
		case key.Matches(km, keys.Down):
			g.scroll++
		}
		return g, nil
	}

	switch {
	case key.Matches(km, keys.Submit):
		g.generate()
		return g, nil
	case key.Matches(km, keys.NextField):
		return g, g.setFocus(g.focus + 1)
	case key.Matches(km, keys.PrevField):
		return g, g.setFocus(g.focus - 1)
	}

	switch g.focus {
	case genType:
		switch {
		case key.Matches(km, keys.Left), key.Matches(km, keys.Up):
			g.typeIdx = cycle(g.typeIdx, -1, len(g.types)+1)
		case key.Matches(km, keys.Right), key.Matches(km, keys.Down):
			g.typeIdx = cycle(g.typeIdx, 1, len(g.types)+1)
		case key.Matches(km, keys.Open):
			if g.typeIdx != 0 {
				return g, g.setFocus(genParteA)
			}
		}
		g.err = nil
		return g, nil
	case genButton:
		if key.Matches(km, keys.Open) {
			g.generate()
		}
		return g, nil
	default:
		if key.Matches(km, keys.Open) {
			return g, g.setFocus(g.focus + 1)
		}
		return g, g.updateInput(km)
	}
}

func (g *Generator) updateInput(m tea.Msg) tea.Cmd {
	i := g.focus - genParteA
	if i < 0 || i >= len(g.inputs) {
		return nil
	}
	var cmd tea.Cmd
	g.inputs[i], cmd = g.inputs[i].Update(m)
	return cmd
}

// setFocus moves the focus. The text fields are skipped while no type is
// selected, because the form for them is not shown yet.
func (g *Generator) setFocus(i int) tea.Cmd {
	g.focus = cycle(i, 0, genCount)
	if g.typeIdx == 0 && g.focus != genType {
		g.focus = genType
	}
	for j := range g.inputs {
		g.inputs[j].Blur()
	}
	if g.focus >= genParteA && g.focus <= genFecha {
		return g.inputs[g.focus-genParteA].Focus()
	}
	return nil
}

func (g *Generator) generate() {
	t, ok := g.SelectedType()
	if !ok {
		return
	}
	doc, err := document.Generate(t.ID, g.Fields(), g.deps.Now())
	if err != nil {
		g.err = err
		return
	}
	g.logger.Info("document generated", "type", t.ID)
	g.doc, g.err, g.scroll = doc, nil, 0
}

// View renders the form, or the generated draft.
func (g *Generator) View(width, height int) string {
	var b strings.Builder
	b.WriteString(header("Generador de Documentos Legales", "Crea documentos legales profesionales con IA"))

	if g.doc != nil {
		b.WriteString(styles.SectionTitle.Render(g.doc.Title))
		b.WriteString("  ")
		b.WriteString(styles.Muted.Render(g.doc.DateString()))
		b.WriteString("\n")
		b.WriteString(styles.ButtonFocused.Render("🔄 Nuevo Documento"))
		b.WriteString("\n\n")
		top := b.String()
		content := styles.ContentBox.Width(max(width-4, 20)).Render(g.doc.Content)
		return top + clip(content, height-strings.Count(top, "\n"), g.scroll)
	}

	label := func(i int, text string) string {
		if g.focus == i {
			return styles.FieldLabelFocused.Render(text)
		}
		return styles.FieldLabel.Render(text)
	}

	typeLabel := "Seleccionar tipo"
	if t, ok := g.SelectedType(); ok {
		typeLabel = t.Name
	}
	selector := "‹ " + typeLabel + " ›"
	if g.focus == genType {
		selector = styles.Primary.Render(selector)
	}
	b.WriteString(label(genType, "Tipo de Documento") + "\n" + selector + "\n\n")

	t, ok := g.SelectedType()
	if !ok {
		return b.String()
	}

	b.WriteString(styles.SectionTitle.Render("Información requerida para " + t.Name))
	b.WriteString("\n\n")
	labels := [4]string{"Parte A (Nombre completo)", "Parte B (Nombre completo)", "Importe/Valor", "Fecha"}
	for i, l := range labels {
		b.WriteString(label(genParteA+i, l) + "\n" + g.inputs[i].View() + "\n\n")
	}

	if g.focus == genButton {
		b.WriteString(styles.ButtonFocused.Render("Generar Documento"))
	} else {
		b.WriteString(styles.Button.Render("Generar Documento"))
	}
	if g.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorLine("No se pudo generar el documento", g.err))
	}

	return clip(b.String(), height, 0)
}
