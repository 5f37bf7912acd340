package nlu

import "strings"

// Tagger is the NLP collaborator: it lemmatizes an utterance into
// content tokens and spots PERSON entities in the original text.
type Tagger interface {
	// ContentTokens returns lowercase lemmas with stop words and
	// non-alphabetic tokens dropped.
	ContentTokens(text string) []string
	// People returns the PERSON entities found in text. Casing matters
	// for entity recognition, so callers pass the raw utterance.
	People(text string) []string
}

// Classifier maps an utterance to an intent tag. Kept as an interface
// so the keyword matcher can later be swapped for a scored model
// without touching dispatch.
type Classifier interface {
	Classify(utterance string) Tag
}

// KeywordClassifier classifies by ordered keyword intersection over a
// fixed table. Classification is a pure function of (utterance, table);
// the tagger holds no state across calls.
type KeywordClassifier struct {
	table  Table
	tagger Tagger
}

func NewKeywordClassifier(table Table, tagger Tagger) *KeywordClassifier {
	return &KeywordClassifier{table: table, tagger: tagger}
}

// Classify returns the first table entry whose keywords intersect the
// utterance's content tokens, or Unknown.
//
// Greeting has one sub-rule: a greeting keyword together with a PERSON
// entity in the raw text means the user is greeting someone by name,
// which routes to GreetFriend instead of Greeting.
func (c *KeywordClassifier) Classify(utterance string) Tag {
	if strings.TrimSpace(utterance) == "" {
		return Unknown
	}

	tokens := toSet(c.tagger.ContentTokens(utterance))
	if len(tokens) == 0 {
		return Unknown
	}

	if intersects(tokens, c.table.Keywords(Greeting)) {
		if len(c.tagger.People(utterance)) > 0 {
			return GreetFriend
		}
		return Greeting
	}

	for _, e := range c.table {
		if intersects(tokens, e.Keywords) {
			return e.Tag
		}
	}
	return Unknown
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func intersects(tokens map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := tokens[kw]; ok {
			return true
		}
	}
	return false
}
