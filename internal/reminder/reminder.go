// Package reminder keeps in-memory reminders and runs the spoken
// dialog that creates them. Entries live for the process lifetime only.
package reminder

import (
	"fmt"
	"time"

	"friday/pkg/numword"
)

// Entry is one pending reminder.
type Entry struct {
	FireAt time.Time
	Task   string
}

// Store is the unordered reminder collection. The assistant loop is
// single-threaded, so there is no locking here.
type Store struct {
	entries []Entry
}

func NewStore() *Store { return &Store{} }

func (s *Store) Add(e Entry) { s.entries = append(s.entries, e) }

func (s *Store) Len() int { return len(s.entries) }

// Due removes and returns every entry whose fire time has passed. A
// second call with the same clock returns nothing, which is what makes
// poll-driven firing fire each reminder exactly once.
func (s *Store) Due(now time.Time) []Entry {
	var due []Entry
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !now.Before(e.FireAt) {
			due = append(due, e)
		} else {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return due
}

// Dialog is the slice of the speech boundary the flow needs: speak a
// prompt, hear one reply. An empty reply means silence or a failed
// transcription.
type Dialog interface {
	Ask(prompt string, timeout time.Duration) string
	Say(text string)
}

// Flow walks a user through setting a reminder: first the task, then
// the duration in minutes. No partial state survives an abort.
type Flow struct {
	store    *Store
	now      func() time.Time
	attempts int

	taskTimeout   time.Duration
	numberTimeout time.Duration
}

// NewFlow wires a flow against the store. attempts bounds how often the
// duration question is re-asked; now may be nil for the wall clock.
func NewFlow(store *Store, attempts int, now func() time.Time) *Flow {
	if attempts < 1 {
		attempts = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Flow{
		store:         store,
		now:           now,
		attempts:      attempts,
		taskTimeout:   10 * time.Second,
		numberTimeout: 15 * time.Second,
	}
}

// Capture runs the dialog and returns the spoken confirmation or
// failure message. The resolved minute count is always echoed back in
// the confirmation: hearing numbers is the flaky step, and saying the
// interpretation out loud is how the user catches a wrong one.
func (f *Flow) Capture(d Dialog) string {
	task := d.Ask("What should I remind you about?", f.taskTimeout)
	if task == "" {
		return "I didn't catch that. Reminder not set."
	}

	minutes, heard, ok := f.captureMinutes(d)
	if !ok {
		return "I couldn't hear the time after multiple attempts. Reminder not set."
	}
	if minutes <= 0 {
		return fmt.Sprintf("I couldn't understand %q as a valid number of minutes. Reminder not set.", heard)
	}

	f.store.Add(Entry{
		FireAt: f.now().Add(time.Duration(minutes) * time.Minute),
		Task:   task,
	})
	return fmt.Sprintf("Reminder set for %d minutes from now: %s", minutes, task)
}

func (f *Flow) captureMinutes(d Dialog) (minutes int, heard string, ok bool) {
	prompt := "When should I remind you? Please say the number of minutes clearly."
	for attempt := 0; attempt < f.attempts; attempt++ {
		raw := d.Ask(prompt, f.numberTimeout)
		if raw != "" {
			if n, parsed := numword.Parse(raw); parsed {
				return n, raw, true
			}
			heard = raw
		}
		prompt = "I didn't catch that. Please speak a bit louder and clearer."
	}
	if heard != "" {
		// All attempts produced speech that never parsed; surface the
		// last thing we heard so the user knows what went wrong.
		d.Say(fmt.Sprintf("I couldn't understand %q as a number.", heard))
	}
	return 0, heard, false
}
