// Package session carries all mutable assistant state through one
// explicit object. Nothing in the pipeline keeps package-level state,
// so sessions stay independently testable.
package session

import (
	"friday/internal/knowledge"
	"friday/internal/llm"
	"friday/internal/mood"
	"friday/internal/reminder"
)

const defaultMaxHistory = 20

// Session is passed to every handler.
type Session struct {
	Mood      *mood.Engine
	Reminders *reminder.Store
	Knowledge *knowledge.Base // nil when the knowledge base is not configured
	Game      GuessGame

	history    []llm.Message
	maxHistory int
}

func New(moodEngine *mood.Engine, store *reminder.Store, kb *knowledge.Base) *Session {
	return &Session{
		Mood:       moodEngine,
		Reminders:  store,
		Knowledge:  kb,
		maxHistory: defaultMaxHistory,
	}
}

// Remember appends one conversation turn, trimming the oldest when the
// window is full. The window keeps LLM prompts bounded.
func (s *Session) Remember(role, content string) {
	s.history = append(s.history, llm.Message{Role: role, Content: content})
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}

// History returns the conversation so far, oldest first.
func (s *Session) History() []llm.Message { return s.history }

// GuessGame is the number-guessing game's per-session state.
type GuessGame struct {
	Target int
	Active bool
}

func (g *GuessGame) Start(target int) {
	g.Target = target
	g.Active = true
}

// Guess checks n against the target. The game ends on a correct guess.
func (g *GuessGame) Guess(n int) string {
	switch {
	case !g.Active:
		return "We're not playing right now. Say 'number guess' to start."
	case n == g.Target:
		g.Active = false
		return "Correct! You guessed the number."
	case n < g.Target:
		return "Too low! Try again."
	default:
		return "Too high! Try again."
	}
}
