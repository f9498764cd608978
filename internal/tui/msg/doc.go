// Package msg defines the message types used by the TUI's Bubbletea event loop.
//
// This package contains the [tea.Msg] types that cross screen boundaries: session
// restore and authentication results and navigation requests. By
// centralizing these types, screens can ask the root model to act without
// importing it.
//
// Results of background fetches carry a [Gen] stamp. The root model drops any
// stamped message whose generation is not the current screen's, so a late
// response can never land on a screen the user already left.
package msg
