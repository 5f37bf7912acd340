// Package numword recovers an integer from freeform transcribed speech.
//
// Speech recognizers hand back numbers in many shapes: "15", "fifteen",
// "twenty five", "2 5", even "one one" for eleven. Parse runs an ordered
// list of strategies over the text and returns the first hit, so each
// quirk stays testable on its own.
package numword

import (
	"strconv"
	"strings"

	"github.com/divan/num2words"
)

// fillers are dropped before any parsing attempt. They come from how
// people answer "how many minutes?": "in ten minutes from now".
var fillers = []string{"minutes", "minute", "mins", "min", "from", "now", "in", "after"}

var wordToNum = map[string]int{
	"zero":         0,
	"one":          1,
	"two":          2,
	"three":        3,
	"four":         4,
	"five":         5,
	"six":          6,
	"seven":        7,
	"eight":        8,
	"nine":         9,
	"ten":          10,
	"eleven":       11,
	"twelve":       12,
	"thirteen":     13,
	"fourteen":     14,
	"fifteen":      15,
	"sixteen":      16,
	"seventeen":    17,
	"eighteen":     18,
	"nineteen":     19,
	"twenty":       20,
	"twenty-one":   21,
	"twenty-two":   22,
	"twenty-three": 23,
	"twenty-four":  24,
	"twenty-five":  25,
	"twenty-six":   26,
	"twenty-seven": 27,
	"twenty-eight": 28,
	"twenty-nine":  29,
	"thirty":       30,
	"thirty-five":  35,
	"forty":        40,
	"forty-five":   45,
	"fifty":        50,
	"fifty-five":   55,
	"sixty":        60,
}

// Strategy tries to read an integer out of cleaned text.
type Strategy func(text string) (int, bool)

// Strategies is the cascade Parse runs, in order. Exposed so each step
// can be exercised on its own.
var Strategies = []Strategy{
	parseDigits,
	parseWord,
	parseSpacedCompound,
	parseSplitDigits,
	parseRepeatedWord,
	parseTokenScan,
	parseSpelledForm,
}

// Parse extracts an integer from transcribed text. The boolean is false
// when no strategy could make sense of the input; a true result is
// always >= 0.
func Parse(text string) (int, bool) {
	cleaned := clean(text)
	if cleaned == "" {
		return 0, false
	}
	for _, try := range Strategies {
		if n, ok := try(cleaned); ok {
			return n, true
		}
	}
	return 0, false
}

func clean(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(text) {
		if isFiller(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func isFiller(tok string) bool {
	for _, w := range fillers {
		if tok == w {
			return true
		}
	}
	return false
}

// "5", "15", "22"
func parseDigits(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// "fifteen", "twenty-five"
func parseWord(text string) (int, bool) {
	n, ok := wordToNum[text]
	return n, ok
}

// "twenty five" spoken form, normalized to the hyphenated table entry.
func parseSpacedCompound(text string) (int, bool) {
	n, ok := wordToNum[strings.ReplaceAll(text, " ", "-")]
	return n, ok
}

// "2 5" mis-segmented by the recognizer, meaning 25.
func parseSplitDigits(text string) (int, bool) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return 0, false
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return 0, false
		}
	}
	n, err := strconv.Atoi(parts[0] + parts[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// "one one" meaning 11. A recognizer artifact seen for digit pairs;
// restricted to single-digit words so "twenty twenty" stays unparsed.
func parseRepeatedWord(text string) (int, bool) {
	parts := strings.Fields(text)
	if len(parts) != 2 || parts[0] != parts[1] {
		return 0, false
	}
	d, ok := wordToNum[parts[0]]
	if !ok || d > 9 {
		return 0, false
	}
	digit := strconv.Itoa(d)
	n, err := strconv.Atoi(digit + digit)
	if err != nil {
		return 0, false
	}
	return n, true
}

// First token that is a bare integer or a known number word, for inputs
// with stray words the filler list missed.
func parseTokenScan(text string) (int, bool) {
	for _, tok := range strings.Fields(text) {
		if n, err := strconv.Atoi(tok); err == nil && n >= 0 {
			return n, true
		}
		if n, ok := wordToNum[tok]; ok {
			return n, true
		}
	}
	return 0, false
}

// Exhaustive match of the spelled form for 1..99, hyphens and spaces
// treated as equal. Only reached when no single token matched earlier,
// so it catches compounds whose leading word the table doesn't know,
// like "ninety nine".
func parseSpelledForm(text string) (int, bool) {
	spaced := strings.ReplaceAll(text, "-", " ")
	for n := 1; n < 100; n++ {
		form := num2words.Convert(n)
		if form == text || strings.ReplaceAll(form, "-", " ") == spaced {
			return n, true
		}
	}
	return 0, false
}
