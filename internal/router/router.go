// Package router holds the closed set of screens and which one is current.
//
// Navigation is one-way: there is no history and no guard. Resolve maps any
// name outside the set to the dashboard, so a bad name can never leave the
// application without a screen.
package router

// ViewName identifies a top-level screen.
type ViewName string

// The screens of the main application.
const (
	Dashboard         ViewName = "dashboard"
	LegalCategories   ViewName = "legal-categories"
	LegalChat         ViewName = "legal-chat"
	ChatHistory       ViewName = "chat-history"
	CasesDashboard    ViewName = "cases-dashboard"
	NewCase           ViewName = "new-case"
	CaseDetail        ViewName = "case-detail"
	DocumentAnalysis  ViewName = "document-analysis"
	DocumentGenerator ViewName = "document-generator"
)

// Default is the view shown after sign-in and for unknown names.
const Default = Dashboard

var known = map[ViewName]string{
	Dashboard:         "Panel de Control",
	LegalCategories:   "Asistente Legal",
	LegalChat:         "Asistente Legal Inteligente",
	ChatHistory:       "Historial de Consultas",
	CasesDashboard:    "Mis Casos Legales",
	NewCase:           "Nuevo Caso",
	CaseDetail:        "Detalle del Caso",
	DocumentAnalysis:  "Análisis de Documentos",
	DocumentGenerator: "Generador de Documentos",
}

// All returns every known view in declaration order.
func All() []ViewName {
	return []ViewName{
		Dashboard, LegalCategories, LegalChat, ChatHistory, CasesDashboard,
		NewCase, CaseDetail, DocumentAnalysis, DocumentGenerator,
	}
}

// Known reports whether v is one of the defined views.
func Known(v ViewName) bool {
	_, ok := known[v]
	return ok
}

// Resolve returns v if it is known and Default otherwise.
func Resolve(v ViewName) ViewName {
	if Known(v) {
		return v
	}
	return Default
}

// Title returns the page title for v, resolving unknown names first.
func Title(v ViewName) string {
	return known[Resolve(v)]
}

// MenuItem is one entry of the sidebar.
type MenuItem struct {
	View  ViewName
	Label string
	Icon  string
}

// MenuItems returns the sidebar entries in display order.
func MenuItems() []MenuItem {
	return []MenuItem{
		{View: Dashboard, Label: "Dashboard", Icon: "📊"},
		{View: LegalCategories, Label: "Asistente Legal", Icon: "🤖"},
		{View: ChatHistory, Label: "Historial Chat", Icon: "💬"},
		{View: CasesDashboard, Label: "Mis Casos", Icon: "📁"},
		{View: NewCase, Label: "Nuevo Caso", Icon: "➕"},
		{View: DocumentAnalysis, Label: "Análisis Documentos", Icon: "📄"},
	}
}

// Router tracks the current view. The zero value starts on Default.
type Router struct {
	current ViewName
}

// New returns a Router on the dashboard.
func New() *Router {
	return &Router{current: Default}
}

// Navigate replaces the current view unconditionally. The name is stored as
// given; Current resolves it.
func (r *Router) Navigate(v ViewName) {
	r.current = v
}

// Raw returns the name last passed to Navigate, unresolved.
func (r *Router) Raw() ViewName {
	return r.current
}

// Current returns the view to render.
func (r *Router) Current() ViewName {
	return Resolve(r.current)
}

// Reset returns to Default, as happens after each sign-in.
func (r *Router) Reset() {
	r.current = Default
}
