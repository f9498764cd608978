package api

import (
	"encoding/json"
)

// User is the account record returned by the auth endpoints. Fields the client
// does not know about are kept in Extra and written back out unchanged, so a
// persisted record round-trips whatever the backend sent.
type User struct {
	ID           string
	Email        string
	Name         string
	Organization string
	Extra        map[string]json.RawMessage
}

var userKnownFields = []string{"id", "email", "name", "organization"}

// IsZero reports whether u carries no data at all, as when the stored record
// is JSON null.
func (u *User) IsZero() bool {
	return u.ID == "" && u.Email == "" && u.Name == "" && u.Organization == "" && len(u.Extra) == 0
}

func (u *User) field(key string) *string {
	switch key {
	case "id":
		return &u.ID
	case "email":
		return &u.Email
	case "name":
		return &u.Name
	case "organization":
		return &u.Organization
	}
	return nil
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra. A known
// field that is not a string is kept in Extra as sent rather than failing the
// whole record.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var user User
	for _, k := range userKnownFields {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			continue
		}
		*user.field(k) = str
		delete(raw, k)
	}
	if len(raw) > 0 {
		user.Extra = raw
	}

	*u = user
	return nil
}

// MarshalJSON writes the known fields plus Extra. A known field held in Extra
// is written back with its original value.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+len(userKnownFields))
	for k, v := range u.Extra {
		out[k] = v
	}
	for _, k := range userKnownFields {
		if _, ok := out[k]; !ok {
			out[k] = *u.field(k)
		}
	}
	return json.Marshal(out)
}

// AuthResponse is the body of a successful login or register call.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	OrganizationName string `json:"organization_name"`
}

// Case statuses set by the backend.
const (
	StatusActive = "activo"
	StatusClosed = "cerrado"
)

// Case priorities accepted by the backend.
const (
	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
)

// Case is a legal case as stored by the backend.
type Case struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name"`
	CaseType    string    `json:"case_type"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// NewCase is the body of POST /api/cases. It is submitted verbatim.
type NewCase struct {
	Title       string `json:"title"`
	ClientName  string `json:"client_name"`
	CaseType    string `json:"case_type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CaseCreated is the body returned by POST /api/cases.
type CaseCreated struct {
	CaseID  string `json:"case_id"`
	Message string `json:"message"`
}

type casesResponse struct {
	Cases []Case `json:"cases"`
}

// Message authors.
const (
	MessageUser = "user"
	MessageAI   = "ai"
)

// Message is one turn of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// Conversation is a stored chat exchange. Category is empty for general questions.
type Conversation struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Messages  []Message `json:"messages"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// FirstMessage returns the content of the opening message, or "" if there is none.
func (c Conversation) FirstMessage() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[0].Content
}

type historyResponse struct {
	Conversations []Conversation `json:"conversations"`
}

// ChatRequest is the body of POST /api/chat/message.
type ChatRequest struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	ConversationID string    `json:"conversation_id"`
	Response       string    `json:"response"`
	Timestamp      Timestamp `json:"timestamp"`
}

// Category is a legal area the assistant can be asked about.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type categoriesResponse struct {
	Categories []Category `json:"categories"`
}

// DashboardStats holds the organization-wide counters.
type DashboardStats struct {
	TotalCases         int `json:"total_cases"`
	ActiveCases        int `json:"active_cases"`
	ClosedCases        int `json:"closed_cases"`
	TotalConversations int `json:"total_conversations"`
	PendingTasks       int `json:"pending_tasks"`
	UpcomingDeadlines  int `json:"upcoming_deadlines"`
}

// AnalyzeRequest is the body of POST /api/documents/analyze.
type AnalyzeRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// KeyDate is a deadline or hearing found in a document.
type KeyDate struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Risk is a finding with a level of "alto", "medio" or "bajo".
type Risk struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

// Clause is a highlighted clause of the analyzed document.
type Clause struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Analysis is the result of a document analysis.
type Analysis struct {
	Filename      string    `json:"filename"`
	Summary       string    `json:"summary"`
	KeyDates      []KeyDate `json:"key_dates"`
	Risks         []Risk    `json:"risks"`
	Jurisprudence []string  `json:"jurisprudence"`
	Clauses       []Clause  `json:"clauses"`
}

// Health is the body of GET /api/health.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
