package screen

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/store"
	"github.com/lexai-app/lexai/internal/tui/msg"
	"github.com/lexai-app/lexai/internal/tui/styles"
	"github.com/lexai-app/lexai/internal/util"
)

// WelcomeMessage opens every chat.
const WelcomeMessage = "¡Hola! Soy tu asistente legal inteligente. ¿En qué puedo ayudarte hoy?"

// ChatMessage is one bubble of the on-screen conversation.
type ChatMessage struct {
	ID      string
	Type    string
	Content string
	Time    time.Time
}

type categoryReadMsg struct {
	msg.Gen
	category string
}

type replyMsg struct {
	msg.Gen
	reply *api.ChatReply
	err   error
}

// Chat is the legal assistant conversation for the selected category.
type Chat struct {
	base
	input          textinput.Model
	spinner        spinner.Model
	category       string
	messages       []ChatMessage
	conversationID string
	inFlight       bool
	err            error
	scroll         int
}

func newChat(b base) *Chat {
	ti := textinput.New()
	ti.Placeholder = "Escribe tu consulta legal..."
	ti.CharLimit = 2000
	ti.Prompt = "› "
	ti.Focus()

	return &Chat{
		base:    b,
		input:   ti,
		spinner: newSpinner(),
		messages: []ChatMessage{{
			ID:      "welcome",
			Type:    api.MessageAI,
			Content: WelcomeMessage,
			Time:    b.deps.Now(),
		}},
	}
}

// Init reads the selected category once, at mount.
func (c *Chat) Init() tea.Cmd {
	b := c.base
	return tea.Batch(textinput.Blink, func() tea.Msg {
		cat, err := b.deps.Store.Get(b.ctx(), store.KeySelectedCategory)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			b.logReadFailure("read_category", err)
		}
		return categoryReadMsg{Gen: b.gen, category: cat}
	})
}

// CapturingInput reports true: the message field always has focus.
func (c *Chat) CapturingInput() bool { return true }

// Messages returns the conversation shown on screen.
func (c *Chat) Messages() []ChatMessage {
	return c.messages
}

// Category returns the category read at mount.
func (c *Chat) Category() string {
	return c.category
}

// InFlight reports whether a message is waiting for its reply.
func (c *Chat) InFlight() bool {
	return c.inFlight
}

// Update handles typing, sending and replies.
func (c *Chat) Update(m tea.Msg) (Screen, tea.Cmd) {
	keys := c.deps.Keys.Content

	switch m := m.(type) {
	case categoryReadMsg:
		c.category = m.category
		return c, nil

	case replyMsg:
		c.inFlight = false
		if m.err != nil {
			c.err = m.err
			c.logWriteFailure("send_message", m.err)
			return c, nil
		}
		c.err = nil
		c.conversationID = m.reply.ConversationID
		c.messages = append(c.messages, ChatMessage{
			ID:      uuid.NewString(),
			Type:    api.MessageAI,
			Content: m.reply.Response,
			Time:    c.deps.Now(),
		})
		c.scroll = 0
		return c, nil

	case spinner.TickMsg:
		if !c.inFlight {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(m)
		return c, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(m, keys.Open):
			return c, c.send()
		case key.Matches(m, keys.Up):
			c.scroll++
			return c, nil
		case key.Matches(m, keys.Down):
			if c.scroll > 0 {
				c.scroll--
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(m)
	return c, cmd
}

// send appends the user's message and posts it. Blank input and input typed
// while a reply is pending are ignored.
func (c *Chat) send() tea.Cmd {
	text := c.input.Value()
	if strings.TrimSpace(text) == "" || c.inFlight {
		return nil
	}

	c.messages = append(c.messages, ChatMessage{
		ID:      uuid.NewString(),
		Type:    api.MessageUser,
		Content: text,
		Time:    c.deps.Now(),
	})
	c.input.SetValue("")
	c.inFlight = true
	c.err = nil
	c.scroll = 0

	b, req := c.base, api.ChatRequest{Message: text, Category: c.category}
	return tea.Batch(c.spinner.Tick, func() tea.Msg {
		reply, err := b.deps.API.SendMessage(b.ctx(), req)
		return replyMsg{Gen: b.gen, reply: reply, err: err}
	})
}

// View renders the conversation with the input line at the bottom.
func (c *Chat) View(width, height int) string {
	var top strings.Builder
	top.WriteString(styles.Title.Render("Asistente Legal Inteligente"))
	if c.category != "" {
		top.WriteString("\n")
		top.WriteString(styles.Muted.Render("Categoría: " + util.CategoryLabel(c.category)))
	}

	bubbleWidth := width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = width
	}

	var conv strings.Builder
	for _, m := range c.messages {
		style := styles.MessageAI
		who := "LexAI"
		if m.Type == api.MessageUser {
			style = styles.MessageUser
			who = "Tú"
		}
		conv.WriteString(styles.Muted.Render(who + " · " + m.Time.Format("15:04:05")))
		conv.WriteString("\n")
		conv.WriteString(style.Width(bubbleWidth).Render(m.Content))
		conv.WriteString("\n\n")
	}
	if c.inFlight {
		conv.WriteString(loadingLine(c.spinner, "Escribiendo..."))
		conv.WriteString("\n")
	}
	if c.err != nil {
		conv.WriteString(errorLine("No se pudo enviar el mensaje", c.err))
		conv.WriteString("\n")
	}

	sendButton := styles.ButtonFocused
	if strings.TrimSpace(c.input.Value()) == "" || c.inFlight {
		sendButton = styles.ButtonDisabled
	}
	bottom := c.input.View() + "  " + sendButton.Render("Enviar")

	topText := top.String()
	avail := height - strings.Count(topText, "\n") - 4
	return topText + "\n\n" + tail(strings.TrimRight(conv.String(), "\n"), avail, c.scroll) + "\n\n" + bottom
}
