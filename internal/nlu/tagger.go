package nlu

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/bbalet/stopwords"
	prose "github.com/jdkato/prose/v2"
)

// ProseTagger implements Tagger with prose for tokenization and entity
// recognition and golem for lemmatization.
type ProseTagger struct {
	lemmatizer *golem.Lemmatizer
}

func NewProseTagger() (*ProseTagger, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer: %w", err)
	}
	return &ProseTagger{lemmatizer: lem}, nil
}

func (t *ProseTagger) ContentTokens(text string) []string {
	cleaned := stopwords.CleanString(strings.ToLower(text), "en", false)
	doc, err := prose.NewDocument(cleaned,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		// Tokenizer failure degrades to whitespace splitting rather
		// than dropping the utterance.
		return lemmatizeAll(t.lemmatizer, strings.Fields(cleaned))
	}

	var out []string
	for _, tok := range doc.Tokens() {
		if !isAlphabetic(tok.Text) {
			continue
		}
		out = append(out, t.lemmatizer.Lemma(tok.Text))
	}
	return out
}

func (t *ProseTagger) People(text string) []string {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil
	}
	var people []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			people = append(people, ent.Text)
		}
	}
	return people
}

func lemmatizeAll(lem *golem.Lemmatizer, words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !isAlphabetic(w) {
			continue
		}
		out = append(out, lem.Lemma(w))
	}
	return out
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
