// Package testutil provides a fake LexAI backend for tests.
//
// The fake speaks the same JSON as the real service, keeps its data in
// memory, counts calls per route and can be told to fail or hang on a route.
// It deliberately does not import internal/api so that package's own tests can
// use it.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSecret signs the tokens the fake backend issues.
const TokenSecret = "lexai-test-secret"

// pythonTime mirrors how the backend serializes naive UTC datetimes.
const pythonTime = "2006-01-02T15:04:05.000000"

// Categories served by GET /api/legal-categories.
var Categories = []map[string]string{
	{"id": "familia", "name": "Derecho de Familia", "icon": "👨‍👩‍👧‍👦", "description": "Divorcios, custodia, adopciones"},
	{"id": "laboral", "name": "Derecho Laboral", "icon": "💼", "description": "Despidos, contratos, demandas laborales"},
	{"id": "civil", "name": "Derecho Civil", "icon": "🏛️", "description": "Contratos, responsabilidad civil"},
	{"id": "penal", "name": "Derecho Penal", "icon": "⚖️", "description": "Delitos, defensas penales"},
	{"id": "mercantil", "name": "Derecho Mercantil", "icon": "🏢", "description": "Sociedades, contratos comerciales"},
	{"id": "inmobiliario", "name": "Derecho Inmobiliario", "icon": "🏠", "description": "Compraventa, alquileres, hipotecas"},
}

type account struct {
	password string
	id       string
	orgID    string
	name     string
	org      string
	email    string
}

type failure struct {
	status int
	detail string
}

// Backend is an in-memory LexAI backend served over httptest.
type Backend struct {
	Server *httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account
	tokens        map[string]*account
	cases         []map[string]any
	conversations []map[string]any
	calls         map[string]int
	failures      map[string]failure
	hangs         map[string]bool
	lastBodies    map[string]json.RawMessage
	now           func() time.Time
	stop          chan struct{}
}

// NewBackend starts a fake backend and stops it when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		accounts:   make(map[string]*account),
		tokens:     make(map[string]*account),
		calls:      make(map[string]int),
		failures:   make(map[string]failure),
		hangs:      make(map[string]bool),
		lastBodies: make(map[string]json.RawMessage),
		now:        func() time.Time { return time.Now().UTC() },
		stop:       make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", b.handleHealth)
	mux.HandleFunc("POST /api/auth/login", b.handleLogin)
	mux.HandleFunc("POST /api/auth/register", b.handleRegister)
	mux.HandleFunc("GET /api/dashboard/stats", b.requireAuth(b.handleStats))
	mux.HandleFunc("GET /api/cases", b.requireAuth(b.handleListCases))
	mux.HandleFunc("POST /api/cases", b.requireAuth(b.handleCreateCase))
	mux.HandleFunc("GET /api/cases/{id}", b.requireAuth(b.handleGetCase))
	mux.HandleFunc("GET /api/chat/history", b.requireAuth(b.handleHistory))
	mux.HandleFunc("POST /api/chat/message", b.requireAuth(b.handleMessage))
	mux.HandleFunc("GET /api/chat/conversation/{id}", b.requireAuth(b.handleConversation))
	mux.HandleFunc("GET /api/legal-categories", b.requireAuth(b.handleCategories))
	mux.HandleFunc("POST /api/documents/analyze", b.requireAuth(b.handleAnalyze))

	b.Server = httptest.NewServer(b.intercept(mux))
	t.Cleanup(b.Server.Close)
	// Runs before Server.Close so hanging handlers return.
	t.Cleanup(func() { close(b.stop) })
	return b
}

// URL returns the base URL of the fake backend.
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser registers an account and returns a valid token for it.
func (b *Backend) AddUser(email, password, name, organization string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct := &account{
		password: password,
		id:       uuid.NewString(),
		orgID:    uuid.NewString(),
		name:     name,
		org:      organization,
		email:    email,
	}
	b.accounts[email] = acct
	return b.issueToken(acct)
}

// AddCase stores a case with the given status and returns its id.
func (b *Backend) AddCase(title, clientName, caseType, status string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ts := b.now().Format(pythonTime)
	// Newest first, like the real service.
	b.cases = append([]map[string]any{{
		"id":          id,
		"title":       title,
		"client_name": clientName,
		"case_type":   caseType,
		"description": "Descripción de " + title,
		"priority":    "media",
		"status":      status,
		"created_at":  ts,
		"updated_at":  ts,
	}}, b.cases...)
	return id
}

// AddConversation stores a conversation whose first message is firstMessage.
func (b *Backend) AddConversation(category, firstMessage string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addConversationLocked(category, firstMessage, "Respuesta de prueba")
}

func (b *Backend) addConversationLocked(category, userMsg, aiMsg string) string {
	id := uuid.NewString()
	ts := b.now().Format(pythonTime)
	var cat any
	if category != "" {
		cat = category
	}
	b.conversations = append([]map[string]any{{
		"id":       id,
		"category": cat,
		"messages": []map[string]any{
			{"id": uuid.NewString(), "type": "user", "content": userMsg, "timestamp": ts},
			{"id": uuid.NewString(), "type": "ai", "content": aiMsg, "timestamp": ts},
		},
		"created_at": ts,
		"updated_at": ts,
	}}, b.conversations...)
	return id
}

// FailWith makes route (for example "GET /api/cases") answer with status and
// a FastAPI detail until cleared with FailWith(route, 0, "").
func (b *Backend) FailWith(route string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = failure{status: status, detail: detail}
}

// Hang makes route block until the client gives up.
func (b *Backend) Hang(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hangs[route] = true
}

// Calls returns how many requests hit route.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// TotalCalls returns the number of requests served on any route.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

// LastBody returns the JSON body of the most recent request to route.
func (b *Backend) LastBody(route string) json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastBodies[route]
}

// CaseCount returns the number of stored cases.
func (b *Backend) CaseCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cases)
}

func (b *Backend) issueToken(acct *account) string {
	claims := jwt.MapClaims{
		"user_id": acct.id,
		"org_id":  acct.orgID,
		"exp":     b.now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TokenSecret))
	if err != nil {
		panic(fmt.Sprintf("testutil: failed to sign token: %v", err))
	}
	b.tokens[token] = acct
	return token
}

func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + routePattern(r.URL.Path)

		var body json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		b.mu.Lock()
		b.calls[route]++
		if len(body) > 0 {
			b.lastBodies[route] = body
		}
		f, failing := b.failures[route]
		hang := b.hangs[route]
		b.mu.Unlock()

		if hang {
			select {
			case <-r.Context().Done():
			case <-b.stop:
			}
			return
		}
		if failing {
			writeJSON(w, f.status, map[string]any{"detail": f.detail})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// routePattern collapses path ids so calls can be counted per route.
func routePattern(path string) string {
	for _, prefix := range []string{"/api/cases/", "/api/chat/conversation/"} {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return prefix + "{id}"
		}
	}
	return path
}

func (b *Backend) requireAuth(next func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Not authenticated"})
			return
		}
		b.mu.Lock()
		acct, ok := b.tokens[strings.TrimPrefix(header, "Bearer ")]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token inválido"})
			return
		}
		next(w, r, acct)
	}
}

func readBody(r *http.Request) []byte {
	data, _ := io.ReadAll(r.Body)
	return data
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func userJSON(acct *account) map[string]any {
	return map[string]any{
		"id":           acct.id,
		"email":        acct.email,
		"name":         acct.name,
		"organization": acct.org,
	}
}

func (b *Backend) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "LexAI API"})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(readBody(r), &req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{{"msg": "invalid body"}}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[req.Email]
	if !ok || acct.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Credenciales inválidas"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": b.issueToken(acct), "user": userJSON(acct)})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email            string `json:"email"`
		Password         string `json:"password"`
		Name             string `json:"name"`
		OrganizationName string `json:"organization_name"`
	}
	if err := json.Unmarshal(readBody(r), &req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{{"loc": []string{"body", "email"}, "msg": "field required"}}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[req.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "El email ya está registrado"})
		return
	}
	acct := &account{
		password: req.Password,
		id:       uuid.NewString(),
		orgID:    uuid.NewString(),
		name:     req.Name,
		org:      req.OrganizationName,
		email:    req.Email,
	}
	b.accounts[req.Email] = acct
	writeJSON(w, http.StatusOK, map[string]any{"token": b.issueToken(acct), "user": userJSON(acct)})
}

func (b *Backend) handleStats(w http.ResponseWriter, _ *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()

	active, closed := 0, 0
	for _, c := range b.cases {
		switch c["status"] {
		case "activo":
			active++
		case "cerrado":
			closed++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_cases":         len(b.cases),
		"active_cases":        active,
		"closed_cases":        closed,
		"total_conversations": len(b.conversations),
		"pending_tasks":       5,
		"upcoming_deadlines":  3,
	})
}

func (b *Backend) handleListCases(w http.ResponseWriter, _ *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cases := b.cases
	if cases == nil {
		cases = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (b *Backend) handleCreateCase(w http.ResponseWriter, r *http.Request, acct *account) {
	var req map[string]any
	if err := json.Unmarshal(readBody(r), &req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{{"msg": "invalid body"}}})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ts := b.now().Format(pythonTime)
	req["id"] = id
	req["status"] = "activo"
	req["created_by"] = acct.id
	req["created_at"] = ts
	req["updated_at"] = ts
	if _, ok := req["priority"]; !ok {
		req["priority"] = "media"
	}
	b.cases = append([]map[string]any{req}, b.cases...)
	writeJSON(w, http.StatusOK, map[string]any{"case_id": id, "message": "Caso creado exitosamente"})
}

func (b *Backend) handleGetCase(w http.ResponseWriter, r *http.Request, _ *account) {
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.cases {
		if c["id"] == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Caso no encontrado"})
}

func (b *Backend) handleHistory(w http.ResponseWriter, _ *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	convs := b.conversations
	if convs == nil {
		convs = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

func (b *Backend) handleMessage(w http.ResponseWriter, r *http.Request, _ *account) {
	var req struct {
		Message  string `json:"message"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(readBody(r), &req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{{"msg": "invalid body"}}})
		return
	}

	reply := "Es importante considerar todos los aspectos legales de su consulta..."
	if req.Category != "" {
		reply = fmt.Sprintf("Respuesta sobre %s: %s", req.Category, req.Message)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.addConversationLocked(req.Category, req.Message, reply)
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"response":        reply,
		"timestamp":       b.now().Format(pythonTime),
	})
}

func (b *Backend) handleConversation(w http.ResponseWriter, r *http.Request, _ *account) {
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.conversations {
		if c["id"] == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Conversación no encontrada"})
}

func (b *Backend) handleCategories(w http.ResponseWriter, _ *http.Request, _ *account) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": Categories})
}

func (b *Backend) handleAnalyze(w http.ResponseWriter, r *http.Request, _ *account) {
	var req struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(readBody(r), &req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{{"msg": "invalid body"}}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": req.Filename,
		"summary":  "Este documento contiene información relevante sobre aspectos legales importantes que requieren atención especializada.",
		"key_dates": []map[string]string{
			{"date": "2024-02-15", "description": "Fecha límite para presentar alegaciones"},
			{"date": "2024-03-01", "description": "Vencimiento del plazo de recurso"},
		},
		"risks": []map[string]string{
			{"level": "alto", "description": "Posible vencimiento de plazos procesales"},
			{"level": "bajo", "description": "Documentación adicional recomendada"},
		},
		"jurisprudence": []string{
			"STS 123/2023 - Criterio relevante para casos similares",
		},
		"clauses": []map[string]string{
			{"type": "atención", "content": "Cláusula de penalización que requiere revisión"},
		},
	})
}
