// Package tts turns handler responses into audio. The default engine is
// espeak-ng through cgo; an OpenAI-compatible speech endpoint can be
// layered on top for a natural voice, with espeak as the fallback.
package tts

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text, const char *voice, int rate, int volume)
{
	if (!text)
	{ return -1; }

	espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0);

	espeak_VOICE specs = { .languages = voice };
	espeak_SetVoiceByProperties(&specs);
	espeak_SetParameter(espeakRATE, rate, 0);
	espeak_SetParameter(espeakVOLUME, volume, 0);

	espeak_Synth(text, 500, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"friday/internal/mood"
)

// Espeak speaks synchronously through espeak-ng. The voice field of
// VoiceParams selects the espeak language voice; empty means "en".
type Espeak struct{}

func (Espeak) Speak(text string, p mood.VoiceParams) error {
	if text == "" {
		return nil
	}

	voice := p.Voice
	if voice == "" {
		voice = "en"
	}
	rate := p.Rate
	if rate <= 0 {
		rate = 160
	}
	volume := int(p.Volume * 100)
	if volume <= 0 || volume > 200 {
		volume = 100
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	cvoice := C.CString(voice)
	defer C.free(unsafe.Pointer(cvoice))

	rc := C.espeak_say(ctext, cvoice, C.int(rate), C.int(volume))
	if rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return nil
}
