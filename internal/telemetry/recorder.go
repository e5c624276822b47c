package telemetry

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

// Recorder is a simulation observer that forwards every Nth step to a
// sink. Timestamps are the wall-clock start plus simulated time, so a run
// lines up on a dashboard as if it had happened in real time.
type Recorder struct {
	sink      Sink
	run       string
	scenario  string
	labels    []string
	cmdLabels []string
	every     int
	start     time.Time
	log       zerolog.Logger

	steps   int
	written int
	err     error
}

type RecorderOptions struct {
	Run           string
	Scenario      string
	Labels        []string
	CommandLabels []string
	// Every forwards one step in Every; values below 1 forward all.
	Every int
	Start time.Time
}

func NewRecorder(sink Sink, opts RecorderOptions, log zerolog.Logger) *Recorder {
	if opts.Every < 1 {
		opts.Every = 1
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	return &Recorder{
		sink:      sink,
		run:       opts.Run,
		scenario:  opts.Scenario,
		labels:    opts.Labels,
		cmdLabels: opts.CommandLabels,
		every:     opts.Every,
		start:     opts.Start,
		log:       log.With().Str("run", opts.Run).Logger(),
	}
}

func (r *Recorder) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	step := r.steps
	r.steps++
	if step%r.every != 0 || r.err != nil {
		return
	}
	f := Frame{
		Run:      r.run,
		Scenario: r.scenario,
		Time:     t,
		Stamp:    r.start.Add(time.Duration(t * float64(time.Second))),
		Values:   Values(r.labels, x, r.cmdLabels, u),
	}
	if err := r.sink.Write(f); err != nil {
		// one failure stops the recorder; the run itself carries on
		r.err = err
		r.log.Error().Err(err).Int("step", step).Msg("telemetry write failed, recorder stopped")
		return
	}
	r.written++
}

// Written is the number of frames the sink accepted.
func (r *Recorder) Written() int { return r.written }

// Err is the write error that stopped the recorder, if any.
func (r *Recorder) Err() error { return r.err }
