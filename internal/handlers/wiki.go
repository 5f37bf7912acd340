package handlers

import (
	"context"
	"strings"

	gowiki "github.com/trietmn/go-wiki"

	"friday/internal/nlu"
	"friday/internal/session"
)

// Summarizer answers encyclopedia lookups.
type Summarizer interface {
	Summary(query string, sentences int) (string, error)
}

// GoWiki is the real Summarizer over the Wikipedia API.
type GoWiki struct{}

func (GoWiki) Summary(query string, sentences int) (string, error) {
	return gowiki.Summary(query, sentences, -1, false, true)
}

var wikiStripWords = nlu.DefaultTable().Keywords(nlu.Wikipedia)

func newWikipediaHandler(svc Services) Handler {
	return func(_ context.Context, _ *session.Session, utterance string) string {
		if svc.Wiki == nil {
			return "Wikipedia lookups aren't configured."
		}
		query := stripKeywords(utterance, wikiStripWords)
		query = strings.TrimPrefix(query, "is ")
		query = strings.TrimSpace(query)
		if query == "" {
			return "What do you want me to look up on Wikipedia?"
		}
		summary, err := svc.Wiki.Summary(query, 2)
		if err != nil || strings.TrimSpace(summary) == "" {
			return "I couldn't find anything on Wikipedia about " + query + "."
		}
		return summary
	}
}
