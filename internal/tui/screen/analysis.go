package screen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
	"github.com/lexai-app/lexai/internal/util"
)

// MaxDocumentSize is the largest file the analysis screen uploads.
const MaxDocumentSize = 1 << 20

type analysisMsg struct {
	msg.Gen
	filename string
	analysis *api.Analysis
	err      error
}

// OpenFile opens a local file for reading. It is the default Deps.OpenFile.
func OpenFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// ReadDocument loads a local file as an analysis request. At most
// MaxDocumentSize+1 bytes are read. Invalid UTF-8 is replaced so the body is
// always valid JSON text.
func ReadDocument(open func(string) (io.ReadCloser, error), path string) (api.AnalyzeRequest, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return api.AnalyzeRequest{}, errors.NewValidationError("path", "Indica la ruta del documento")
	}
	unreadable := func(err error) error {
		return errors.NewValidationError("path", fmt.Sprintf("No se pudo leer %s", filepath.Base(path))).WithCause(err)
	}

	f, err := open(path)
	if err != nil {
		return api.AnalyzeRequest{}, unreadable(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxDocumentSize+1))
	if err != nil {
		return api.AnalyzeRequest{}, unreadable(err)
	}
	if len(data) > MaxDocumentSize {
		return api.AnalyzeRequest{}, errors.NewValidationError("path", "El documento supera el tamaño máximo de 1 MB")
	}
	content := string(data)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "�")
	}
	return api.AnalyzeRequest{Filename: filepath.Base(path), Content: content}, nil
}

// Analysis uploads a local document and shows what the backend found in it.
type Analysis struct {
	base
	input    textinput.Model
	spinner  spinner.Model
	loading  bool
	filename string
	result   *api.Analysis
	err      error
	scroll   int
}

func newAnalysis(b base) *Analysis {
	ti := textinput.New()
	ti.Placeholder = "Ruta del documento (ej: ~/contratos/alquiler.txt)"
	ti.CharLimit = 1024
	ti.Prompt = "📄 "
	ti.Focus()
	return &Analysis{base: b, input: ti, spinner: newSpinner()}
}

// Init starts the cursor blinking.
func (a *Analysis) Init() tea.Cmd {
	return textinput.Blink
}

// CapturingInput reports true: the path field always has focus.
func (a *Analysis) CapturingInput() bool { return true }

// Update handles path entry, upload and scrolling through the results.
func (a *Analysis) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := a.deps.Keys.Content

	switch m := m.(type) {
	case analysisMsg:
		a.loading = false
		a.filename = m.filename
		if m.err != nil {
			a.err = m.err
			switch {
			case !errors.Is(m.err, errors.ErrInvalidInput):
				a.logWriteFailure("analyze_document", m.err)
			case errors.Unwrap(m.err) != nil:
				a.logger.Warn("failed to read document", "file", m.filename, "error", m.err.Error())
			}
			return a, nil
		}
		a.result, a.err, a.scroll = m.analysis, nil, 0
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(m, keys.Open):
			return a, a.analyze()
		case key.Matches(m, keys.Up):
			if a.scroll > 0 {
				a.scroll--
			}
			return a, nil
		case key.Matches(m, keys.Down):
			a.scroll++
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func (a *Analysis) analyze() tea.Cmd {
	if a.loading {
		return nil
	}
	a.loading = true
	a.err = nil
	b, path := a.base, expandHome(a.input.Value())
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		req, err := ReadDocument(b.deps.OpenFile, path)
		if err != nil {
			return analysisMsg{Gen: b.gen, filename: filepath.Base(path), err: err}
		}
		res, err := b.deps.API.AnalyzeDocument(b.ctx(), req)
		return analysisMsg{Gen: b.gen, filename: req.Filename, analysis: res, err: err}
	})
}

// View renders the upload field and the results.
func (a *Analysis) View(width, height int) string {
	var b strings.Builder
	b.WriteString(header("Análisis de Documentos por IA", "Sube un documento para obtener análisis automático"))
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	switch {
	case a.loading:
		b.WriteString(loadingLine(a.spinner, "Analizando documento..."))
		return b.String()
	case a.err != nil:
		var v *errors.ValidationError
		if errors.As(a.err, &v) {
			b.WriteString(styles.WarningMsg.Render(v.Message))
		} else {
			b.WriteString(errorLine("No se pudo analizar el documento", a.err))
		}
		return b.String()
	case a.result == nil:
		return b.String()
	}

	top := b.String()
	avail := height - strings.Count(top, "\n")
	return top + clip(renderAnalysis(a.result, width), avail, a.scroll)
}

func renderAnalysis(r *api.Analysis, width int) string {
	var b strings.Builder
	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(styles.SectionTitle.Render(title))
		b.WriteString("\n")
	}

	b.WriteString(styles.Title.Render("Resultados del Análisis"))
	if r.Filename != "" {
		b.WriteString(" " + styles.Muted.Render(r.Filename))
	}
	b.WriteString("\n")

	section("Resumen")
	b.WriteString(wrap(r.Summary, width-2))
	b.WriteString("\n")

	section("Fechas Importantes")
	for _, d := range r.KeyDates {
		b.WriteString(styles.Primary.Render(d.Date) + "  " + d.Description + "\n")
	}

	section("Riesgos Identificados")
	for _, risk := range r.Risks {
		level := lipgloss.NewStyle().Bold(true).Foreground(styles.RiskColor(risk.Level)).Render(util.Upper(risk.Level))
		b.WriteString(level + "  " + risk.Description + "\n")
	}

	section("Jurisprudencia Relevante")
	for _, j := range r.Jurisprudence {
		b.WriteString("• " + j + "\n")
	}

	section("Cláusulas Destacadas")
	for _, c := range r.Clauses {
		b.WriteString(styles.Bold.Render(util.Upper(c.Type)) + "\n")
		b.WriteString(wrap(c.Content, width-2) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
