package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"friday/internal/mood"
)

// Neural speaks through an OpenAI-compatible /v1/audio/speech endpoint
// and plays the returned mp3. Any failure falls back to the espeak
// engine so the assistant never goes mute.
type Neural struct {
	baseURL  string
	apiKey   string
	model    string
	client   *http.Client
	fallback Espeak
}

// NewNeural builds the HTTP engine. httpClient may be nil; it exists so
// the same SOCKS client used for chat completions can carry speech too.
func NewNeural(baseURL, apiKey, model string, httpClient *http.Client) *Neural {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "tts-1"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Neural{baseURL: baseURL, apiKey: apiKey, model: model, client: httpClient}
}

func (n *Neural) Speak(text string, p mood.VoiceParams) error {
	if text == "" {
		return nil
	}
	audio, err := n.synthesize(context.Background(), text, p)
	if err != nil {
		return n.fallback.Speak(text, p)
	}
	if err := PlayMP3(bytes.NewReader(audio), p.Volume); err != nil {
		return n.fallback.Speak(text, p)
	}
	return nil
}

func (n *Neural) synthesize(ctx context.Context, text string, p mood.VoiceParams) ([]byte, error) {
	voice := p.Voice
	if voice == "" {
		voice = "alloy"
	}
	// the endpoint takes speed as a multiplier of its default rate
	speed := float64(p.Rate) / 160.0
	if speed <= 0 {
		speed = 1.0
	}

	payload, err := json.Marshal(map[string]any{
		"model": n.model,
		"input": text,
		"voice": voice,
		"speed": speed,
	})
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts: speech request: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// PlayMP3 decodes and plays an mp3 stream, blocking until playback
// finishes. volume in (0,1] attenuates; anything else plays at full
// level.
func PlayMP3(r io.Reader, volume float64) error {
	streamer, format, err := mp3.Decode(io.NopCloser(r))
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	var s beep.Streamer = streamer
	if volume > 0 && volume < 1 {
		s = &scaled{Streamer: streamer, gain: volume}
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() { close(done) })))
	<-done
	return nil
}

// scaled multiplies samples by a constant gain.
type scaled struct {
	beep.Streamer
	gain float64
}

func (s *scaled) Stream(samples [][2]float64) (int, bool) {
	n, ok := s.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= s.gain
		samples[i][1] *= s.gain
	}
	return n, ok
}
