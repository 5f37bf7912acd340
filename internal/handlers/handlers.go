// Package handlers routes classified intents to the code that serves
// them. Every handler returns the string to speak; failures of external
// collaborators are converted to spoken messages here and never cross
// the dispatch boundary.
package handlers

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"friday/internal/llm"
	"friday/internal/nlu"
	"friday/internal/reminder"
	"friday/internal/session"
	"friday/internal/weather"
	"friday/pkg/numword"
)

// Handler serves one intent. It receives the original utterance so it
// can strip trigger words to recover arguments.
type Handler func(ctx context.Context, s *session.Session, utterance string) string

// Dialog is the interactive speech surface handlers use for follow-up
// questions (city for weather, task and time for reminders).
type Dialog = reminder.Dialog

// Services are the external collaborators handlers call out to. Any nil
// service degrades to a spoken "not available" answer instead of a
// crash.
type Services struct {
	Tagger     nlu.Tagger
	Weather    *weather.Client
	Wiki       Summarizer
	Search     *SearchClient
	Fun        *FunClient
	Chat       llm.Chatter
	Runner     CommandRunner
	Dialog     Dialog
	Transcribe func(ctx context.Context, path string) (string, error) // audio file -> text, optional

	ReminderAttempts int
	DefaultCity      string
	SearchRoot       string // root for spoken file searches, default $HOME
	Now              func() time.Time
	RandInt          func(n int) int
}

func (s *Services) defaults() {
	if s.ReminderAttempts <= 0 {
		s.ReminderAttempts = 3
	}
	if s.DefaultCity == "" {
		s.DefaultCity = "Guntur"
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.RandInt == nil {
		s.RandInt = rand.Intn
	}
}

// Registry maps intents to handlers.
type Registry struct {
	table    map[nlu.Tag]Handler
	fallback Handler
}

// NewRegistry wires the full intent set against svc.
func NewRegistry(svc Services) *Registry {
	svc.defaults()

	chat := newChatHandler(svc)
	r := &Registry{fallback: chat, table: map[nlu.Tag]Handler{
		nlu.Greeting:    staticHandler("Hello! How can I help you?"),
		nlu.Exit:        staticHandler("Goodbye!"),
		nlu.Sleep:       staticHandler("Going back to standby. Say the wake word when you need me."),
		nlu.GreetFriend: newGreetFriendHandler(svc),
		nlu.Weather:     newWeatherHandler(svc),
		nlu.Time:        newTimeHandler(svc),
		nlu.Date:        newDateHandler(svc),
		nlu.System:      newSystemHandler(svc),
		nlu.File:        newFileHandler(svc),
		nlu.Wikipedia:   newWikipediaHandler(svc),
		nlu.Search:      newSearchHandler(svc),
		nlu.Fun:         newFunHandler(svc),
		nlu.Game:        newGameHandler(svc),
		nlu.Mood:        newMoodHandler(),
		nlu.Reminder:    newReminderHandler(svc),
		nlu.Knowledge:   newKnowledgeHandler(svc),
	}}
	return r
}

// Dispatch runs the handler for tag. Unrecognized intents are not an
// error; they go to the chat fallback.
func (r *Registry) Dispatch(ctx context.Context, tag nlu.Tag, s *session.Session, utterance string) string {
	if h, ok := r.table[tag]; ok {
		return h(ctx, s, utterance)
	}
	return r.fallback(ctx, s, utterance)
}

func staticHandler(response string) Handler {
	return func(context.Context, *session.Session, string) string { return response }
}

func newTimeHandler(svc Services) Handler {
	return func(context.Context, *session.Session, string) string {
		return "The time is " + svc.Now().Format("15:04:05")
	}
}

func newDateHandler(svc Services) Handler {
	return func(context.Context, *session.Session, string) string {
		return "Today's date is " + svc.Now().Format("January 2, 2006")
	}
}

func newMoodHandler() Handler {
	return func(_ context.Context, s *session.Session, utterance string) string {
		return s.Mood.SetFromUtterance(utterance)
	}
}

func newWeatherHandler(svc Services) Handler {
	return func(ctx context.Context, _ *session.Session, _ string) string {
		if svc.Weather == nil {
			return "Weather lookups aren't configured."
		}
		city := ""
		if svc.Dialog != nil {
			city = strings.TrimSpace(svc.Dialog.Ask("Which city would you like the weather for?", 5*time.Second))
		}
		if city == "" {
			if svc.Dialog != nil {
				svc.Dialog.Say("I didn't catch that. Using default city " + svc.DefaultCity + ".")
			}
			city = svc.DefaultCity
		}
		report, err := svc.Weather.Current(ctx, city)
		if err != nil {
			return "Could not get weather for " + city + "."
		}
		return report
	}
}

func newReminderHandler(svc Services) Handler {
	return func(_ context.Context, s *session.Session, _ string) string {
		if svc.Dialog == nil {
			return "I can't take reminders without a microphone."
		}
		flow := reminder.NewFlow(s.Reminders, svc.ReminderAttempts, svc.Now)
		return flow.Capture(svc.Dialog)
	}
}

func newGreetFriendHandler(svc Services) Handler {
	return func(_ context.Context, _ *session.Session, utterance string) string {
		var names []string
		if svc.Tagger != nil {
			names = svc.Tagger.People(utterance)
		}
		if len(names) == 0 {
			names = nameAfterFriend(utterance)
		}
		if len(names) == 0 {
			names = titleCasedTokens(utterance)
		}
		if len(names) == 0 {
			return "Hello! Who am I greeting?"
		}
		return "Hey " + strings.Join(names, ", ") + "! How are you doing today?"
	}
}

func newGameHandler(svc Services) Handler {
	return func(_ context.Context, s *session.Session, utterance string) string {
		lower := strings.ToLower(utterance)

		if strings.Contains(lower, "number guess") || (!s.Game.Active && strings.Contains(lower, "play")) {
			s.Game.Start(svc.RandInt(20) + 1)
			return s.Mood.Decorate("I've thought of a number between 1 and 20. Try to guess it!")
		}

		if s.Game.Active && strings.Contains(lower, "guess") {
			tail := lower[strings.LastIndex(lower, "guess")+len("guess"):]
			n, ok := numword.Parse(tail)
			if !ok {
				return "Please guess a number, like: guess 7"
			}
			return s.Mood.Decorate(s.Game.Guess(n))
		}

		return "Game command not recognized. Say 'number guess' to start."
	}
}

// nameAfterFriend picks the word following "friend", so "greet my
// friend bob" works even when the tagger finds no entity in lowercase
// transcripts.
func nameAfterFriend(utterance string) []string {
	tokens := strings.Fields(utterance)
	for i, tok := range tokens {
		if strings.ToLower(tok) == "friend" && i+1 < len(tokens) {
			return []string{titleCase(tokens[i+1])}
		}
	}
	return nil
}

func titleCasedTokens(utterance string) []string {
	var names []string
	for _, tok := range strings.Fields(utterance) {
		r := []rune(tok)
		if len(r) > 1 && r[0] >= 'A' && r[0] <= 'Z' {
			names = append(names, tok)
		}
	}
	return names
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	r := []rune(strings.ToLower(word))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// stripKeywords removes every trigger phrase from the utterance and
// returns the remaining query text.
func stripKeywords(utterance string, keywords []string) string {
	query := strings.ToLower(utterance)
	for _, kw := range keywords {
		query = strings.ReplaceAll(query, kw, "")
	}
	return strings.Join(strings.Fields(query), " ")
}
