package telemetry

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

// InfluxConfig addresses one bucket.
type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// NewPoint turns a frame into a point tagged with run and scenario.
func NewPoint(measurement string, f Frame) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(measurement).
		AddTag("run", f.Run).
		SetTime(f.Stamp)
	if f.Scenario != "" {
		p.AddTag("scenario", f.Scenario)
	}
	p.AddField("t", f.Time)
	for _, k := range slices.Sorted(maps.Keys(f.Values)) {
		p.AddField(k, f.Values[k])
	}
	return p
}

// InfluxSink writes frames through the client's batching write API.
// Write errors arrive asynchronously and are logged.
type InfluxSink struct {
	client      influxdb2.Client
	writer      influxdb2_api.WriteAPI
	measurement string
	log         zerolog.Logger
	done        chan struct{}
}

// OpenInflux connects to InfluxDB. When the server does not answer a ping
// and backupPath is set, frames go to a gzipped line-protocol file there
// instead.
func OpenInflux(ctx context.Context, cfg InfluxConfig, backupPath string, log zerolog.Logger) (Sink, error) {
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := client.Ping(ctx)
	if err != nil || !running {
		client.Close()
		if backupPath == "" {
			return nil, fmt.Errorf("influxdb at %s not reachable: %v", cfg.URL, err)
		}
		log.Warn().Str("backupPath", backupPath).Msg("InfluxDB not reachable, writing to backup file")
		return OpenBackup(backupPath, cfg.Measurement)
	}

	s := &InfluxSink{
		client:      client,
		writer:      client.WriteAPI(cfg.Org, cfg.Bucket),
		measurement: cfg.Measurement,
		log:         log.With().Str("bucket", cfg.Bucket).Logger(),
		done:        make(chan struct{}),
	}
	go func(errorsCh <-chan error) {
		defer close(s.done)
		for writeErr := range errorsCh {
			s.log.Error().Err(writeErr).Msg("Error sending data to InfluxDB")
		}
	}(s.writer.Errors())

	s.log.Info().Str("url", cfg.URL).Msg("InfluxDB sink ready")
	return s, nil
}

func (s *InfluxSink) Write(f Frame) error {
	s.writer.WritePoint(NewPoint(s.measurement, f))
	return nil
}

// Close flushes pending points and closes the client.
func (s *InfluxSink) Close() error {
	s.writer.Flush()
	s.client.Close()
	select {
	case <-s.done:
	case <-time.After(time.Second):
	}
	return nil
}

// LineSink writes one line of InfluxDB line protocol per frame.
type LineSink struct {
	mu          sync.Mutex
	w           io.Writer
	closers     []io.Closer
	measurement string
	closed      bool
}

func NewLineSink(w io.Writer, measurement string) *LineSink {
	return &LineSink{w: w, measurement: measurement}
}

// OpenBackup appends gzipped line protocol to path.
func OpenBackup(path, measurement string) (*LineSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating backup file: %w", err)
	}
	gz := gzip.NewWriter(file)
	s := NewLineSink(gz, measurement)
	s.closers = []io.Closer{gz, file}
	return s, nil
}

func (s *LineSink) Write(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	line := influxdb2_write.PointToLineProtocol(NewPoint(s.measurement, f), time.Nanosecond)
	if _, err := io.WriteString(s.w, line); err != nil {
		return fmt.Errorf("error writing line protocol: %w", err)
	}
	return nil
}

func (s *LineSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
