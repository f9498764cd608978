package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
	"github.com/lexai-app/lexai/internal/util"
)

// filterOption is one choice of a list filter. An empty value matches everything.
type filterOption struct {
	value string
	label string
}

// historyFilters are the category filters of the chat history.
var historyFilters = []filterOption{
	{"", "Todas las categorías"},
	{"familia", "Derecho de Familia"},
	{"laboral", "Derecho Laboral"},
	{"civil", "Derecho Civil"},
	{"penal", "Derecho Penal"},
	{"mercantil", "Derecho Mercantil"},
}

func filterLabels(opts []filterOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.label
	}
	return out
}

type historyLoadedMsg struct {
	msg.Gen
	conversations []api.Conversation
	err           error
}

type conversationLoadedMsg struct {
	msg.Gen
	conversation *api.Conversation
	err          error
}

// History lists past conversations. Enter opens the selected one in full.
type History struct {
	base
	spinner       spinner.Model
	loading       bool
	conversations []api.Conversation
	err           error
	filter        int
	cursor        int

	open       *api.Conversation
	openErr    error
	opening    bool
	openedID   string
	openScroll int
}

func newHistory(b base) *History {
	return &History{base: b, spinner: newSpinner(), loading: true}
}

func (h *History) load() tea.Cmd {
	b := h.base
	return func() tea.Msg {
		convs, err := b.deps.API.ChatHistory(b.ctx())
		return historyLoadedMsg{Gen: b.gen, conversations: convs, err: err}
	}
}

// Init fetches the history.
func (h *History) Init() tea.Cmd {
	return tea.Batch(h.load(), h.spinner.Tick)
}

// Visible returns the conversations that pass the current filter, in backend order.
func (h *History) Visible() []api.Conversation {
	return filterConversations(h.conversations, historyFilters[h.filter].value)
}

func filterConversations(convs []api.Conversation, category string) []api.Conversation {
	if category == "" {
		return convs
	}
	var out []api.Conversation
	for _, c := range convs {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// SetFilter selects a category filter by value. Unknown values select all.
func (h *History) SetFilter(category string) {
	h.filter = 0
	for i, f := range historyFilters {
		if f.value == category {
			h.filter = i
		}
	}
	h.cursor = 0
}

// Update handles filtering, cursor movement and opening a conversation.
func (h *History) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := h.deps.Keys.Content

	switch m := m.(type) {
	case historyLoadedMsg:
		h.loading = false
		h.conversations, h.err = m.conversations, m.err
		if m.err != nil {
			h.logReadFailure("chat_history", m.err)
		}
		return h, nil

	case conversationLoadedMsg:
		h.opening = false
		h.open, h.openErr = m.conversation, m.err
		if m.err != nil {
			h.logReadFailure("get_conversation", m.err)
		}
		return h, nil

	case spinner.TickMsg:
		if !h.loading && !h.opening {
			return h, nil
		}
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(m)
		return h, cmd

	case tea.KeyMsg:
		if h.openedID != "" {
			return h, h.updateOpen(m)
		}
		visible := h.Visible()
		switch {
		case key.Matches(m, keys.Left):
			h.filter = cycle(h.filter, -1, len(historyFilters))
			h.cursor = 0
		case key.Matches(m, keys.Right):
			h.filter = cycle(h.filter, 1, len(historyFilters))
			h.cursor = 0
		case key.Matches(m, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(m, keys.Down):
			if h.cursor < len(visible)-1 {
				h.cursor++
			}
		case key.Matches(m, keys.Open):
			if h.cursor < len(visible) {
				return h, h.openConversation(visible[h.cursor].ID)
			}
		case key.Matches(m, keys.Refresh):
			h.loading = true
			return h, tea.Batch(h.load(), h.spinner.Tick)
		}
	}
	return h, nil
}

func (h *History) updateOpen(m tea.KeyMsg) tea.Cmd {
	keys := h.deps.Keys.Content
	switch {
	case key.Matches(m, keys.Open), m.String() == "backspace":
		h.openedID, h.open, h.openErr, h.openScroll = "", nil, nil, 0
	case key.Matches(m, keys.Up):
		if h.openScroll > 0 {
			h.openScroll--
		}
	case key.Matches(m, keys.Down):
		h.openScroll++
	}
	return nil
}

func (h *History) openConversation(id string) tea.Cmd {
	h.openedID = id
	h.opening = true
	h.open, h.openErr = nil, nil
	b := h.base
	return tea.Batch(h.spinner.Tick, func() tea.Msg {
		conv, err := b.deps.API.GetConversation(b.ctx(), id)
		return conversationLoadedMsg{Gen: b.gen, conversation: conv, err: err}
	})
}

// View renders the list, or the open conversation.
func (h *History) View(width, height int) string {
	var b strings.Builder
	b.WriteString(header("Historial de Consultas", "Revisa tus conversaciones anteriores con el asistente legal"))

	if h.openedID != "" {
		b.WriteString(h.renderOpen(width, height))
		return b.String()
	}

	b.WriteString(tabs(filterLabels(historyFilters), h.filter))
	b.WriteString("\n\n")

	switch {
	case h.loading:
		b.WriteString(loadingLine(h.spinner, "Cargando historial..."))
		return b.String()
	case h.err != nil:
		b.WriteString(errorLine("No se pudo cargar el historial", h.err))
		return b.String()
	}

	visible := h.Visible()
	if len(visible) == 0 {
		b.WriteString(styles.Muted.Render("No hay consultas en esta categoría"))
		return b.String()
	}

	cardWidth := max(width-4, 20)
	var list strings.Builder
	cursorLine := 0
	for i, c := range visible {
		if i == h.cursor {
			cursorLine = strings.Count(list.String(), "\n")
		}
		body := styles.Bold.Render(util.CategoryLabel(c.Category)) + "  " + styles.Muted.Render(c.CreatedAt.DateString()) +
			"\n" + conversationPreview(c, 100)
		box := styles.ContentBox
		if i == h.cursor {
			box = styles.ContentBoxSelected
		}
		list.WriteString(box.Width(cardWidth).Render(body))
		list.WriteString("\n")
	}

	avail := height - strings.Count(b.String(), "\n")
	offset := 0
	if cursorLine > avail-5 {
		offset = cursorLine - avail + 5
	}
	b.WriteString(clip(list.String(), avail, offset))
	return b.String()
}

func (h *History) renderOpen(width, height int) string {
	var b strings.Builder
	switch {
	case h.opening:
		b.WriteString(loadingLine(h.spinner, "Cargando conversación..."))
		return b.String()
	case h.openErr != nil:
		b.WriteString(errorLine("No se pudo cargar la conversación", h.openErr))
		return b.String()
	case h.open == nil:
		return ""
	}

	b.WriteString(styles.SectionTitle.Render(util.CategoryLabel(h.open.Category)))
	b.WriteString("  ")
	b.WriteString(styles.Muted.Render(h.open.CreatedAt.DateString()))
	b.WriteString("\n\n")

	for _, m := range h.open.Messages {
		style := styles.MessageAI
		who := "LexAI"
		if m.Type == api.MessageUser {
			style = styles.MessageUser
			who = "Tú"
		}
		b.WriteString(styles.Muted.Render(who + " · " + m.Timestamp.ClockString()))
		b.WriteString("\n")
		b.WriteString(style.Width(max(width*3/4, 20)).Render(m.Content))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.Muted.Render("enter: volver a la lista"))

	return clip(b.String(), height-4, h.openScroll)
}
