package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner animates a progress indicator with a status label while the agent
// waits on the model.
type Spinner struct {
	label  string
	writer io.Writer
	stop   chan struct{}
	done   chan struct{}
	mu     sync.Mutex
	active bool
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		label:  "thinking",
		writer: w,
	}
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		idx := 0
		for {
			select {
			case <-s.stop:
				// Clear the spinner line
				fmt.Fprint(s.writer, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(s.writer, "\r%s %s", spinnerFrames[idx%len(spinnerFrames)], s.label)
				idx++
			}
		}
	}()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	close(s.stop)
	<-s.done
}
