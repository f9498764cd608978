package msg

import "github.com/lexai-app/lexai/internal/router"

// RestoredMsg is sent once the session has been read from storage.
type RestoredMsg struct {
	Authenticated bool
}

// AuthResultMsg is the outcome of a login or register attempt.
type AuthResultMsg struct {
	Register bool
	Err      error
}

// NavigateMsg asks the root model to show another view. CaseID is only read
// by the case detail view.
type NavigateMsg struct {
	View   router.ViewName
	CaseID string
}

// Gen stamps a result with the screen generation it was requested for.
type Gen struct {
	N uint64
}

// Generation returns the stamped generation.
func (g Gen) Generation() uint64 {
	return g.N
}

// Stamped is implemented by every message that embeds Gen.
type Stamped interface {
	Generation() uint64
}
