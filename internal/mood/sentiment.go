package mood

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// polarity thresholds on the VADER compound score.
const (
	positiveThreshold = 0.3
	negativeThreshold = -0.3
)

// VaderAnalyzer scores sentiment with the VADER lexicon. Stateless.
type VaderAnalyzer struct{}

func NewVaderAnalyzer() *VaderAnalyzer { return &VaderAnalyzer{} }

func (VaderAnalyzer) Polarity(text string) Polarity {
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	score := sentitext.PolarityScore(parsed)
	switch {
	case score.Compound > positiveThreshold:
		return Positive
	case score.Compound < negativeThreshold:
		return Negative
	default:
		return Neutral
	}
}
