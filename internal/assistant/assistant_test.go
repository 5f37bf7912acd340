package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friday/internal/handlers"
	"friday/internal/mood"
	"friday/internal/nlu"
	"friday/internal/reminder"
	"friday/internal/session"
)

type fixedAnalyzer struct{ p mood.Polarity }

func (f fixedAnalyzer) Polarity(string) mood.Polarity { return f.p }

// scriptedListener replays wake windows and utterances in order. When a
// script runs out the context is cancelled so Run terminates.
type scriptedListener struct {
	windows    []string
	utterances []string
	cancel     context.CancelFunc
}

func (s *scriptedListener) WakeWindow(context.Context) (string, error) {
	if len(s.windows) == 0 {
		s.cancel()
		return "", nil
	}
	w := s.windows[0]
	s.windows = s.windows[1:]
	return w, nil
}

func (s *scriptedListener) Utterance(context.Context, time.Duration) (string, error) {
	if len(s.utterances) == 0 {
		s.cancel()
		return "", nil
	}
	u := s.utterances[0]
	s.utterances = s.utterances[1:]
	return u, nil
}

// step scripts one listen result, either text or a failure.
type step struct {
	text string
	err  error
}

// flakyListener replays steps so capture failures can be scripted.
type flakyListener struct {
	windows    []step
	utterances []step
	cancel     context.CancelFunc
}

func (f *flakyListener) WakeWindow(context.Context) (string, error) {
	if len(f.windows) == 0 {
		f.cancel()
		return "", nil
	}
	s := f.windows[0]
	f.windows = f.windows[1:]
	return s.text, s.err
}

func (f *flakyListener) Utterance(context.Context, time.Duration) (string, error) {
	if len(f.utterances) == 0 {
		f.cancel()
		return "", nil
	}
	s := f.utterances[0]
	f.utterances = f.utterances[1:]
	return s.text, s.err
}

type recordingSpeaker struct {
	lines  []string
	params []mood.VoiceParams
}

func (r *recordingSpeaker) Speak(text string, p mood.VoiceParams) error {
	r.lines = append(r.lines, text)
	r.params = append(r.params, p)
	return nil
}

type keywordTagger struct{}

func (keywordTagger) ContentTokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func (keywordTagger) People(string) []string { return nil }

func newTestAssistant(t *testing.T, listener Listener, polarity mood.Polarity, now time.Time) (*Assistant, *recordingSpeaker, *session.Session) {
	t.Helper()

	sess := session.New(mood.NewEngine(fixedAnalyzer{polarity}, nil), reminder.NewStore(), nil)
	speaker := &recordingSpeaker{}
	classifier := nlu.NewKeywordClassifier(nlu.DefaultTable(), keywordTagger{})
	registry := handlers.NewRegistry(handlers.Services{Now: func() time.Time { return now }})

	a := New(listener, speaker, classifier, registry, sess, Options{Now: func() time.Time { return now }})
	return a, speaker, sess
}

func TestWakeGateIgnoresOtherSpeech(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &scriptedListener{
		windows: []string{"just people talking", "more chatter"},
		cancel:  cancel,
	}
	a, speaker, _ := newTestAssistant(t, listener, mood.Neutral, time.Now())

	err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, speaker.lines)
	assert.False(t, a.awake)
}

func TestWakeWordOpensSessionAndExitCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &scriptedListener{
		windows:    []string{"background", "hey friday are you there"},
		utterances: []string{"hello", "bye"},
		cancel:     cancel,
	}
	a, speaker, _ := newTestAssistant(t, listener, mood.Neutral, time.Now())

	err := a.Run(ctx)
	require.NoError(t, err)

	require.Len(t, speaker.lines, 3)
	assert.Equal(t, "Yes? I'm listening.", speaker.lines[0])
	assert.Equal(t, "Hello! How can I help you?", speaker.lines[1])
	assert.Equal(t, "Goodbye!", speaker.lines[2])
}

func TestSleepReturnsToStandby(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &scriptedListener{
		windows:    []string{"friday", "nothing here"},
		utterances: []string{"go to sleep"},
		cancel:     cancel,
	}
	a, speaker, _ := newTestAssistant(t, listener, mood.Neutral, time.Now())

	err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, a.awake)
	require.Len(t, speaker.lines, 2)
	assert.Contains(t, speaker.lines[1], "standby")
}

func TestSilenceIsSkippedWithoutSpeaking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &scriptedListener{
		windows:    []string{"friday"},
		utterances: []string{"", "   ", "bye"},
		cancel:     cancel,
	}
	a, speaker, _ := newTestAssistant(t, listener, mood.Neutral, time.Now())

	require.NoError(t, a.Run(ctx))
	require.Len(t, speaker.lines, 2) // wake prompt + goodbye
	assert.Equal(t, "Goodbye!", speaker.lines[1])
}

func TestDueRemindersAreSpokenFirst(t *testing.T) {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	listener := &scriptedListener{
		windows:    []string{"friday"},
		utterances: []string{"bye"},
		cancel:     cancel,
	}
	a, speaker, sess := newTestAssistant(t, listener, mood.Neutral, now)
	sess.Reminders.Add(reminder.Entry{FireAt: now.Add(-time.Minute), Task: "stand up"})

	require.NoError(t, a.Run(ctx))
	require.GreaterOrEqual(t, len(speaker.lines), 2)
	assert.Equal(t, "Reminder: stand up", speaker.lines[1])
}

func TestWakeWindowErrorKeepsStandbyAlive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &flakyListener{
		windows: []step{
			{err: errors.New("transcription timed out")},
			{text: "friday"},
		},
		utterances: []step{{text: "bye"}},
		cancel:     cancel,
	}
	a, speaker, _ := newTestAssistant(t, listener, mood.Neutral, time.Now())

	err := a.Run(ctx)
	require.NoError(t, err)
	require.Len(t, speaker.lines, 2)
	assert.Equal(t, "Yes? I'm listening.", speaker.lines[0])
	assert.Equal(t, "Goodbye!", speaker.lines[1])
}

func TestUtteranceErrorCountsAsSilence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &flakyListener{
		windows: []step{{text: "friday"}},
		utterances: []step{
			{err: errors.New("portaudio: stream read failed")},
			{text: "bye"},
		},
		cancel: cancel,
	}
	a, speaker, _ := newTestAssistant(t, listener, mood.Neutral, time.Now())

	err := a.Run(ctx)
	require.NoError(t, err)
	require.Len(t, speaker.lines, 2) // wake prompt + goodbye, no error spoken
	assert.Equal(t, "Goodbye!", speaker.lines[1])
	assert.True(t, a.awake)
}

func TestNegativeUtteranceSlowsVoiceAndTurnsEmpathetic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := &scriptedListener{
		windows:    []string{"friday"},
		utterances: []string{"this day is terrible, what time is it"},
		cancel:     cancel,
	}
	a, speaker, sess := newTestAssistant(t, listener, mood.Negative, time.Now())

	assert.ErrorIs(t, a.Run(ctx), context.Canceled)
	assert.Equal(t, mood.Empathetic, sess.Mood.State())

	// last spoken line is the time reply, rendered slower and quieter
	last := speaker.params[len(speaker.params)-1]
	assert.Equal(t, 120, last.Rate) // empathetic 140 minus the negative delta
	assert.InDelta(t, 0.7, last.Volume, 1e-9)
}
