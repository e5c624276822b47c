// Package telemetry streams vehicle samples out of a running simulation:
// to InfluxDB, to line-protocol files, to memory for tests and the live
// view, and as OpenTelemetry metrics.
package telemetry

import (
	"errors"
	"sync"
	"time"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

var ErrClosed = errors.New("telemetry: sink closed")

// Frame is one sampled step of a run.
type Frame struct {
	Run      string
	Scenario string
	Time     float64 // simulated seconds since the run started
	Stamp    time.Time
	Values   map[string]float64
}

// Sink receives frames in time order.
type Sink interface {
	Write(f Frame) error
	Close() error
}

// MemorySink keeps every frame. It is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) Write(f Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *MemorySink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Frames returns a copy of what has been written so far.
func (m *MemorySink) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.frames...)
}

// Last returns the most recent frame.
func (m *MemorySink) Last() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return Frame{}, false
	}
	return m.frames[len(m.frames)-1], true
}

// Values zips a sample and its command row with their labels. Command
// columns are prefixed with "cmd.".
func Values(labels []string, x dynamo.State, cmdLabels []string, u dynamo.Control) map[string]float64 {
	out := make(map[string]float64, len(x)+len(u))
	for i, v := range x {
		if i < len(labels) {
			out[labels[i]] = v
		}
	}
	for i, v := range u {
		if i < len(cmdLabels) {
			out["cmd."+cmdLabels[i]] = v
		}
	}
	return out
}
