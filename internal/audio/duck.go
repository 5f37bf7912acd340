package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type stream struct {
	id     int
	volume int // percent
	app    string
}

type fade struct {
	id       int
	from, to int
}

// Ducker lowers the volume of every other PulseAudio stream while the
// assistant talks, then restores it. Streams whose application.name is
// in selfNames are left alone so the assistant never ducks itself.
type Ducker struct {
	mu        sync.Mutex
	active    bool
	selfNames []string
	restore   map[int]int // stream id -> volume before ducking
	minVolume int
}

func NewDucker(selfNames []string, minVolume int) *Ducker {
	return &Ducker{
		selfNames: append([]string(nil), selfNames...),
		restore:   make(map[int]int),
		minVolume: clampPercent(minVolume),
	}
}

// Duck fades every foreign stream to current*factor, floored at
// minVolume. Calling Duck while already ducked is a no-op.
func (d *Ducker) Duck(ctx context.Context, factor float64, dur time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := listStreams(ctx)
	if err != nil {
		return fmt.Errorf("list streams: %w", err)
	}

	d.restore = make(map[int]int)
	var fades []fade
	for _, s := range streams {
		if d.isSelf(s) {
			continue
		}
		target := int(math.Round(float64(s.volume) * factor))
		if target < d.minVolume {
			target = d.minVolume
		}
		d.restore[s.id] = s.volume
		fades = append(fades, fade{id: s.id, from: s.volume, to: clampPercent(target)})
	}

	if err := runFades(ctx, fades, dur); err != nil {
		return err
	}
	d.active = true
	return nil
}

// Restore fades ducked streams back to their pre-duck volume. Streams
// that appeared after Duck are left untouched.
func (d *Ducker) Restore(ctx context.Context, dur time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := listStreams(ctx)
	if err != nil {
		return fmt.Errorf("list streams: %w", err)
	}

	var fades []fade
	for _, s := range streams {
		if d.isSelf(s) {
			continue
		}
		orig, ok := d.restore[s.id]
		if !ok {
			continue
		}
		fades = append(fades, fade{id: s.id, from: s.volume, to: orig})
	}

	if err := runFades(ctx, fades, dur); err != nil {
		return err
	}
	d.restore = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) isSelf(s stream) bool {
	for _, name := range d.selfNames {
		if s.app == name {
			return true
		}
	}
	return false
}

// runFades steps every target volume from its start to its end over
// dur. dur <= 0 jumps straight to the end values.
func runFades(ctx context.Context, fades []fade, dur time.Duration) error {
	if len(fades) == 0 {
		return nil
	}
	if dur <= 0 {
		for _, f := range fades {
			if err := setStreamVolume(ctx, f.id, f.to); err != nil {
				return err
			}
		}
		return nil
	}

	const step = 10 * time.Millisecond
	steps := int(dur / step)
	if steps < 1 {
		steps = 1
	}

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frac := float64(i) / float64(steps)
		for _, f := range fades {
			v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
			if err := setStreamVolume(ctx, f.id, v); err != nil {
				return err
			}
		}
		if i < steps {
			time.Sleep(dur / time.Duration(steps))
		}
	}
	return nil
}

func listStreams(ctx context.Context) ([]stream, error) {
	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	blocks := strings.Split(string(out), "Sink Input #")
	var res []stream
	for _, block := range blocks[1:] {
		nl := strings.IndexByte(block, '\n')
		if nl <= 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(block[:nl]))
		if err != nil {
			continue
		}

		s := stream{id: id}
		for _, line := range strings.Split(block[nl+1:], "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "Volume:") && s.volume == 0 {
				if m := percentRe.FindStringSubmatch(line); len(m) >= 2 {
					s.volume, _ = strconv.Atoi(m[1])
				}
			}
			if strings.HasPrefix(line, "application.name =") && s.app == "" {
				if parts := strings.SplitN(line, `"`, 3); len(parts) >= 2 {
					s.app = parts[1]
				}
			}
		}
		if s.volume == 0 && s.app == "" {
			continue
		}
		res = append(res, s)
	}
	return res, nil
}

func setStreamVolume(ctx context.Context, id, percent int) error {
	arg := fmt.Sprintf("%d%%", clampPercent(percent))
	return exec.CommandContext(ctx, "pactl", "set-sink-input-volume", strconv.Itoa(id), arg).Run()
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 150 {
		return 150
	}
	return v
}
