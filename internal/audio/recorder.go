// Package audio captures microphone PCM through portaudio and keeps
// other desktop streams out of the way while the assistant speaks.
package audio

import (
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate = 16000
	frameSize  = 320 // 20ms at 16 kHz

	silenceThreshRMS = 0.015
	trailingSilence  = 600 * time.Millisecond
)

// Recorder owns the portaudio lifecycle. Init once, Close on shutdown.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error { return portaudio.Initialize() }

func (r *Recorder) Close() { portaudio.Terminate() }

// RecordWindow captures a fixed-length window. The wake-word gate calls
// this in short slices so standby stays cheap.
func (r *Recorder) RecordWindow(dur time.Duration) ([]float32, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, int(float64(sampleRate)*dur.Seconds()))

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	frames := int(dur / (20 * time.Millisecond))
	for i := 0; i < frames; i++ {
		if err := stream.Read(); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	return out, nil
}

// RecordUtterance captures until the speaker stops: recording begins at
// the first loud frame and ends after trailingSilence of quiet, or at
// maxLen. A fully silent window returns no samples.
func (r *Recorder) RecordUtterance(maxLen time.Duration) ([]float32, error) {
	if maxLen <= 0 {
		maxLen = 10 * time.Second
	}

	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		speaking      bool
		silenceFrames int
	)
	maxFrames := int(maxLen / (20 * time.Millisecond))

	for i := 0; i < maxFrames; i++ {
		if err := stream.Read(); err != nil {
			return nil, err
		}

		if frameRMS(buf) > silenceThreshRMS {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}
		if speaking {
			silenceFrames++
			if time.Duration(silenceFrames)*20*time.Millisecond >= trailingSilence {
				break
			}
			out = append(out, buf...)
		}
	}
	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
