package screen

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/router"
	"github.com/lexai-app/lexai/internal/store"
)

func mountChat(t *testing.T, category string) (*harness, *Chat) {
	t.Helper()
	deps, backend := newDeps(t)
	if err := deps.Store.Set(context.Background(), store.KeySelectedCategory, category); err != nil {
		t.Fatal(err)
	}
	h := mount(t, router.LegalChat, deps, backend, "", func(s Screen) bool {
		return s.(*Chat).Category() == category
	})
	return h, h.s.(*Chat)
}

func TestChat_StartsWithWelcome(t *testing.T) {
	h, c := mountChat(t, "laboral")

	if c.Category() != "laboral" {
		t.Errorf("Category() = %q, want laboral", c.Category())
	}
	msgs := c.Messages()
	if len(msgs) != 1 || msgs[0].Type != api.MessageAI || msgs[0].Content != WelcomeMessage {
		t.Fatalf("Messages() = %+v, want only the welcome message", msgs)
	}
	if !strings.Contains(h.s.View(200, 40), WelcomeMessage) {
		t.Error("view should show the welcome message")
	}
	if h.backend.TotalCalls() != 0 {
		t.Errorf("mounting the chat made %d backend calls", h.backend.TotalCalls())
	}
}

func TestChat_IgnoresBlankInput(t *testing.T) {
	h, c := mountChat(t, "laboral")

	if cmd := h.press(keyEnter); cmd != nil {
		t.Error("empty input should not send")
	}
	h.typeText("   ")
	if cmd := h.press(keyEnter); cmd != nil {
		t.Error("whitespace input should not send")
	}
	if len(c.Messages()) != 1 {
		t.Errorf("len(Messages()) = %d, want 1", len(c.Messages()))
	}
}

func TestChat_SendAndReply(t *testing.T) {
	h, c := mountChat(t, "laboral")

	h.typeText("¿Cuánto dura el periodo de prueba?")
	cmd := h.press(keyEnter)
	if cmd == nil {
		t.Fatal("expected a send command")
	}

	msgs := c.Messages()
	if len(msgs) != 2 || msgs[1].Type != api.MessageUser || msgs[1].Content != "¿Cuánto dura el periodo de prueba?" {
		t.Fatalf("user message should be appended immediately, got %+v", msgs)
	}
	if !c.InFlight() {
		t.Fatal("InFlight() should be true while waiting")
	}
	if c.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", c.input.Value())
	}

	// A second message while the first is pending is ignored.
	h.typeText("otra pregunta")
	if again := h.press(keyEnter); again != nil {
		t.Error("send while in flight should be ignored")
	}
	if len(c.Messages()) != 2 {
		t.Fatalf("len(Messages()) = %d while in flight, want 2", len(c.Messages()))
	}

	h.run(cmd, func() bool { return !c.InFlight() })

	msgs = c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len(Messages()) = %d, want 3", len(msgs))
	}
	if msgs[2].Type != api.MessageAI || msgs[2].Content != "Respuesta sobre laboral: ¿Cuánto dura el periodo de prueba?" {
		t.Errorf("reply = %+v", msgs[2])
	}

	var body api.ChatRequest
	if err := json.Unmarshal(h.backend.LastBody("POST /api/chat/message"), &body); err != nil {
		t.Fatal(err)
	}
	if body.Category != "laboral" {
		t.Errorf("request category = %q, want laboral", body.Category)
	}
	if n := h.backend.Calls("POST /api/chat/message"); n != 1 {
		t.Errorf("message posted %d times, want 1", n)
	}
}

func TestChat_FailureKeepsConversation(t *testing.T) {
	h, c := mountChat(t, "penal")
	h.backend.FailWith("POST /api/chat/message", http.StatusInternalServerError, "modelo no disponible")

	h.typeText("¿Qué es un atestado?")
	cmd := h.press(keyEnter)
	h.run(cmd, func() bool { return !c.InFlight() })

	if len(c.Messages()) != 2 {
		t.Errorf("len(Messages()) = %d, want 2 (welcome and the user message)", len(c.Messages()))
	}
	if c.err == nil {
		t.Fatal("the failure should be recorded")
	}
	if !strings.Contains(h.s.View(200, 40), "No se pudo enviar el mensaje") {
		t.Error("view should show the failure notice")
	}

	// The user can try again.
	h.backend.FailWith("POST /api/chat/message", 0, "")
	h.typeText("¿Qué es un atestado?")
	h.run(h.press(keyEnter), func() bool { return !c.InFlight() })
	if len(c.Messages()) != 4 {
		t.Errorf("len(Messages()) = %d after retry, want 4", len(c.Messages()))
	}
}
