package handlers

import (
	"context"
	"strings"

	"friday/internal/llm"
	"friday/internal/mood"
	"friday/internal/session"
)

// newChatHandler is the fallback for utterances no keyword matched. The
// whole session history rides along so the model keeps context across
// turns.
func newChatHandler(svc Services) Handler {
	return func(ctx context.Context, s *session.Session, utterance string) string {
		if svc.Chat == nil {
			return "Hmm, I didn't understand that. Could you rephrase?"
		}

		s.Remember("user", utterance)

		var announce func(string)
		if svc.Dialog != nil {
			announce = svc.Dialog.Say
		}
		ind := llm.NewIndicator(announce)
		ind.Start()
		reply, err := svc.Chat.Chat(ctx, s.History(), personaPrompt(s.Mood.State()))
		ind.Stop()
		if err != nil {
			return "I couldn't reach my language model right now."
		}

		reply = strings.TrimSpace(reply)
		s.Remember("assistant", reply)
		return reply
	}
}

func personaPrompt(state mood.State) string {
	base := "You are Friday, a concise voice assistant. Answers are spoken aloud, so keep them to a couple of sentences, no markdown."
	switch state {
	case mood.Funny:
		return base + " Be light and throw in a quick quip."
	case mood.Sarcastic:
		return base + " Allow yourself a dry, sarcastic edge."
	case mood.Empathetic:
		return base + " The user may be having a rough time; be warm and supportive."
	default:
		return base
	}
}
