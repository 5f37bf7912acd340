// Package notify plays short attention sounds: the earcon that confirms
// the wake word landed, before any speech synthesis happens.
package notify

import (
	"fmt"
	"os"

	"friday/internal/tts"
)

// Earcon plays the mp3 at path and blocks until it finishes. Callers
// treat a failure as cosmetic and keep going.
func Earcon(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open earcon: %w", err)
	}
	defer f.Close()

	return tts.PlayMP3(f, 1)
}
