// Package mood holds the assistant's persona state and how it colors
// speech output.
package mood

import "strings"

// State is one persona. It changes when the user asks for it, or when
// negative sentiment forces empathy.
type State string

const (
	Serious    State = "serious"
	Funny      State = "funny"
	Sarcastic  State = "sarcastic"
	Empathetic State = "empathetic"
)

// Polarity buckets an utterance's sentiment.
type Polarity string

const (
	Positive Polarity = "positive"
	Neutral  Polarity = "neutral"
	Negative Polarity = "negative"
)

// Analyzer scores an utterance's sentiment.
type Analyzer interface {
	// Polarity classifies text; compound scores above 0.3 are positive,
	// below -0.3 negative, everything else neutral.
	Polarity(text string) Polarity
}

// VoiceParams are the synthesis knobs a mood and sentiment combine
// into.
type VoiceParams struct {
	Rate   int     // words per minute
	Volume float64 // 0..1
	Voice  string  // synthesizer voice id
}

const (
	baseRate   = 160
	baseVolume = 1.0
)

// Engine tracks the current mood. Not safe for concurrent use; the
// assistant loop is single-threaded.
type Engine struct {
	state    State
	analyzer Analyzer
	voices   map[State]string
}

// NewEngine starts in the serious persona. voices maps each state to a
// synthesizer voice id and may be nil or partial.
func NewEngine(analyzer Analyzer, voices map[State]string) *Engine {
	return &Engine{state: Serious, analyzer: analyzer, voices: voices}
}

func (e *Engine) State() State { return e.state }

// Set switches persona explicitly.
func (e *Engine) Set(s State) string {
	e.state = s
	return "My personality is now " + string(s) + "."
}

// SetFromUtterance picks the mood named in the utterance, defaulting to
// serious, matching how the mood intent has always behaved.
func (e *Engine) SetFromUtterance(utterance string) string {
	lower := strings.ToLower(utterance)
	switch {
	case strings.Contains(lower, "funny"):
		return e.Set(Funny)
	case strings.Contains(lower, "sarcastic"):
		return e.Set(Sarcastic)
	case strings.Contains(lower, "empathetic"):
		return e.Set(Empathetic)
	default:
		return e.Set(Serious)
	}
}

// Observe folds one utterance's sentiment into the state and returns
// the polarity. Strong negativity escalates to empathetic; the engine
// never auto-escalates out of it, only an explicit Set does.
func (e *Engine) Observe(utterance string) Polarity {
	if utterance == "" {
		return Neutral
	}
	p := e.analyzer.Polarity(utterance)
	if p == Negative && e.state != Empathetic {
		e.state = Empathetic
	}
	return p
}

// Params combines the mood's base voice with a sentiment delta:
// positive speech runs a little faster, negative slower and quieter.
func (e *Engine) Params(p Polarity) VoiceParams {
	v := VoiceParams{Rate: baseRate, Volume: baseVolume, Voice: e.voices[e.state]}

	switch e.state {
	case Funny:
		v.Rate = 190
	case Sarcastic:
		v.Rate = 150
	case Empathetic:
		v.Rate = 140
	}

	switch p {
	case Positive:
		v.Rate += 20
	case Negative:
		v.Rate -= 20
		v.Volume = 0.7
	}
	return v
}

// Decorate phrases the response in the current persona.
func (e *Engine) Decorate(response string) string {
	switch e.state {
	case Funny:
		return response + " 😂"
	case Sarcastic:
		return "Oh really? " + response + " 🙄"
	case Empathetic:
		return "I hear you. " + response
	default:
		return response
	}
}
