package llm

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Indicator is the cosmetic "thinking" side show printed while a chat
// call is outstanding. One goroutine polls a shared flag; Stop clears
// the flag and joins before the caller proceeds. Nothing downstream
// depends on it.
type Indicator struct {
	announce func(string)
	interval time.Duration

	running atomic.Bool
	done    chan struct{}
}

func NewIndicator(announce func(string)) *Indicator {
	return &Indicator{announce: announce, interval: 500 * time.Millisecond}
}

// Start announces and begins printing dots until Stop.
func (in *Indicator) Start() {
	if !in.running.CompareAndSwap(false, true) {
		return
	}
	in.done = make(chan struct{})
	if in.announce != nil {
		in.announce("Let me think for a second.")
	}
	go func() {
		defer close(in.done)
		dots := []string{".", "..", "..."}
		for i := 0; in.running.Load(); i++ {
			fmt.Printf("\rthinking%-3s", dots[i%len(dots)])
			time.Sleep(in.interval)
		}
		fmt.Print("\r           \r")
	}()
}

// Stop clears the flag and waits for the printer goroutine to exit.
func (in *Indicator) Stop() {
	if !in.running.CompareAndSwap(true, false) {
		return
	}
	<-in.done
}
