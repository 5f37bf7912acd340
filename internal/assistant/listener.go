package assistant

import (
	"context"
	"time"

	"friday/internal/audio"
	"friday/pkg/stt"
)

const wakeWindowLen = 3 * time.Second

// MicListener is the production Listener: portaudio capture piped into
// whisper.
type MicListener struct {
	rec *audio.Recorder
	tr  *stt.Transcriber
	opt stt.Options
}

func NewMicListener(rec *audio.Recorder, tr *stt.Transcriber) *MicListener {
	return &MicListener{rec: rec, tr: tr, opt: stt.Options{Language: "en"}}
}

func (m *MicListener) WakeWindow(ctx context.Context) (string, error) {
	pcm, err := m.rec.RecordWindow(wakeWindowLen)
	if err != nil {
		return "", err
	}
	return m.transcribe(ctx, pcm)
}

func (m *MicListener) Utterance(ctx context.Context, maxLen time.Duration) (string, error) {
	pcm, err := m.rec.RecordUtterance(maxLen)
	if err != nil {
		return "", err
	}
	return m.transcribe(ctx, pcm)
}

// transcribe maps an empty capture to "", which the loop treats as
// silence rather than an error.
func (m *MicListener) transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	res, err := m.tr.TranscribePCM(ctx, pcm, m.opt)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
