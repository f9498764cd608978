package testutil

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoopTimeout bounds how long Loop waits for its condition.
const LoopTimeout = 5 * time.Second

// Loop is a small Bubble Tea event loop for tests. It runs cmd, feeds every
// message it produces to update, runs the commands update returns and stops
// as soon as done reports true for the model. Animation messages are
// discarded so spinners and cursors do not keep the loop busy.
func Loop[M any](t *testing.T, model M, cmd tea.Cmd, update func(M, tea.Msg) (M, tea.Cmd), done func(M) bool) M {
	t.Helper()

	msgs := make(chan tea.Msg, 64)
	stop := make(chan struct{})
	defer close(stop)

	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			m := c()
			if batch, ok := m.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			if m == nil {
				return
			}
			select {
			case msgs <- m:
			case <-stop:
			}
		}()
	}

	run(cmd)
	if done(model) {
		return model
	}

	timeout := time.After(LoopTimeout)
	for {
		select {
		case m := <-msgs:
			if animation(m) {
				continue
			}
			var next tea.Cmd
			model, next = update(model, m)
			if done(model) {
				return model
			}
			run(next)
		case <-timeout:
			t.Fatalf("condition not reached within %s", LoopTimeout)
			return model
		}
	}
}

func animation(m tea.Msg) bool {
	switch m.(type) {
	case spinner.TickMsg, cursor.BlinkMsg:
		return true
	}
	return false
}
