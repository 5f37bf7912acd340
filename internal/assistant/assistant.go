// Package assistant runs the conversation loop: a wake-word gate in
// standby, then a listen/classify/dispatch/speak cycle until the user
// sends it back to sleep or exits.
package assistant

import (
	"context"
	"strings"
	"time"

	log "log/slog"

	"friday/internal/console"
	"friday/internal/handlers"
	"friday/internal/mood"
	"friday/internal/nlu"
	"friday/internal/session"
)

// Listener converts microphone audio into text. WakeWindow captures a
// short fixed slice for the standby gate; Utterance captures one
// voice-activity-delimited phrase. Both return "" when nothing was
// said.
type Listener interface {
	WakeWindow(ctx context.Context) (string, error)
	Utterance(ctx context.Context, maxLen time.Duration) (string, error)
}

// Speaker renders one response with the given voice parameters.
type Speaker interface {
	Speak(text string, p mood.VoiceParams) error
}

// Ducker fades other audio streams around speech. Optional.
type Ducker interface {
	Duck(ctx context.Context, factor float64, dur time.Duration) error
	Restore(ctx context.Context, dur time.Duration) error
}

type Assistant struct {
	listen     Listener
	speak      Speaker
	classifier nlu.Classifier
	registry   *handlers.Registry
	sess       *session.Session

	console *console.Server // optional conversation mirror
	ducker  Ducker          // optional
	earcon  func()          // optional wake confirmation sound

	wakeWord string
	now      func() time.Time

	wakeRequests chan struct{}
	awake        bool
}

type Options struct {
	Console  *console.Server
	Ducker   Ducker
	Earcon   func()
	WakeWord string
	Now      func() time.Time
}

func New(listen Listener, speak Speaker, classifier nlu.Classifier, registry *handlers.Registry, sess *session.Session, opt Options) *Assistant {
	if opt.WakeWord == "" {
		opt.WakeWord = "friday"
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Assistant{
		listen:       listen,
		speak:        speak,
		classifier:   classifier,
		registry:     registry,
		sess:         sess,
		console:      opt.Console,
		ducker:       opt.Ducker,
		earcon:       opt.Earcon,
		wakeWord:     strings.ToLower(opt.WakeWord),
		now:          opt.Now,
		wakeRequests: make(chan struct{}, 1),
	}
}

// ForceWake skips the wake-word gate once, for external triggers like
// friday-ctl.
func (a *Assistant) ForceWake() {
	select {
	case a.wakeRequests <- struct{}{}:
	default:
	}
}

// listenRetryDelay keeps a broken capture device from spinning the loop
// hot between failed listens.
const listenRetryDelay = 250 * time.Millisecond

// Run drives the loop until the exit intent or ctx cancellation.
// Listener failures are never fatal; they are logged and treated as
// silence.
func (a *Assistant) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !a.awake {
			a.standby(ctx)
			continue
		}

		if a.serveTurn(ctx) {
			return nil
		}
	}
}

// standby listens for one wake window. A typed console line also wakes
// the assistant and is served immediately.
func (a *Assistant) standby(ctx context.Context) {
	select {
	case <-a.wakeRequests:
		a.wake()
		a.say(ctx, "Yes? I'm listening.")
		return
	default:
	}

	if a.console != nil {
		select {
		case typed := <-a.console.Inputs():
			a.wake()
			a.handleUtterance(ctx, typed)
			return
		default:
		}
	}

	heard, err := a.listen.WakeWindow(ctx)
	if err != nil {
		log.Error("wake window failed", "err", err)
		a.listenPause(ctx)
		return
	}
	if !strings.Contains(strings.ToLower(heard), a.wakeWord) {
		return
	}

	a.wake()
	a.say(ctx, "Yes? I'm listening.")
}

func (a *Assistant) wake() {
	a.awake = true
	if a.earcon != nil {
		a.earcon()
	}
	a.mirror("state", "awake")
	log.Info("wake word heard, listening")
}

// serveTurn handles one utterance. Returns done=true on the exit
// intent. A failed or timed-out capture counts as silence.
func (a *Assistant) serveTurn(ctx context.Context) (done bool) {
	a.fireDueReminders(ctx)

	utterance, err := a.nextUtterance(ctx)
	if err != nil {
		log.Error("listening failed", "err", err)
		a.listenPause(ctx)
		return false
	}
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return false
	}

	return a.handleUtterance(ctx, utterance)
}

// listenPause backs off after a capture failure, waking early on
// cancellation.
func (a *Assistant) listenPause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(listenRetryDelay):
	}
}

func (a *Assistant) handleUtterance(ctx context.Context, utterance string) (done bool) {
	a.mirror("heard", utterance)
	log.Info("heard", "text", utterance)

	// escape hatch: lines starting with "!" run through the shell
	if strings.HasPrefix(utterance, "!") {
		out := handlers.RunShell(ctx, strings.TrimPrefix(utterance, "!"))
		a.say(ctx, out)
		return false
	}

	tag := a.classifier.Classify(utterance)
	a.mirror("intent", string(tag))
	log.Debug("classified", "intent", tag)

	response := a.registry.Dispatch(ctx, tag, a.sess, utterance)

	polarity := a.sess.Mood.Observe(utterance)
	a.speakOut(ctx, response, a.sess.Mood.Params(polarity))

	switch tag {
	case nlu.Sleep:
		a.awake = false
		a.mirror("state", "standby")
		log.Info("going to standby")
	case nlu.Exit:
		log.Info("exit requested")
		return true
	}
	return false
}

// nextUtterance prefers typed console input; otherwise it listens.
func (a *Assistant) nextUtterance(ctx context.Context) (string, error) {
	if a.console != nil {
		select {
		case typed := <-a.console.Inputs():
			return typed, nil
		default:
		}
	}
	return a.listen.Utterance(ctx, 10*time.Second)
}

func (a *Assistant) fireDueReminders(ctx context.Context) {
	for _, e := range a.sess.Reminders.Due(a.now()) {
		a.say(ctx, "Reminder: "+e.Task)
	}
}

// say speaks with the current mood's neutral voice.
func (a *Assistant) say(ctx context.Context, text string) {
	a.speakOut(ctx, text, a.sess.Mood.Params(mood.Neutral))
}

func (a *Assistant) speakOut(ctx context.Context, text string, p mood.VoiceParams) {
	if text == "" {
		return
	}
	a.mirror("reply", text)

	if a.ducker != nil {
		if err := a.ducker.Duck(ctx, 0.3, 200*time.Millisecond); err != nil {
			log.Warn("duck failed", "err", err)
		}
		defer func() {
			if err := a.ducker.Restore(ctx, 200*time.Millisecond); err != nil {
				log.Warn("unduck failed", "err", err)
			}
		}()
	}

	if err := a.speak.Speak(text, p); err != nil {
		log.Error("speech failed", "err", err)
	}
}

func (a *Assistant) mirror(kind, text string) {
	if a.console != nil {
		a.console.Broadcast(kind, text)
	}
}

// Dialog adapts the assistant's listen/speak pair to the follow-up
// question interface handlers use. The handler registry is built before
// the assistant, so the dialog starts unbound and Bind closes the loop.
type Dialog struct {
	assistant *Assistant
}

func NewDialog() *Dialog { return &Dialog{} }

func (d *Dialog) Bind(a *Assistant) { d.assistant = a }

func (d *Dialog) Ask(prompt string, timeout time.Duration) string {
	if d.assistant == nil {
		return ""
	}
	ctx := context.Background()
	d.assistant.say(ctx, prompt)

	if d.assistant.console != nil {
		select {
		case typed := <-d.assistant.console.Inputs():
			return typed
		default:
		}
	}

	heard, err := d.assistant.listen.Utterance(ctx, timeout)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(heard)
}

func (d *Dialog) Say(text string) {
	if d.assistant == nil {
		return
	}
	d.assistant.say(context.Background(), text)
}
