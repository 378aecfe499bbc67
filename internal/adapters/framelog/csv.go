// Package framelog persists the fixed-rate swarm log as CSV, one row per
// robot per tick, so analysis code can align the log with experiment
// video by timestamp.
package framelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
	"github.com/johnsmith-uni/johnbot2/internal/ports"
)

const (
	filePrefix = "johnbot2_"
	timeLayout = "20060102_150405"

	// missingMark is written for sensor and motor fields of robots that
	// have never reported, so "robot silent" stays distinguishable from
	// "robot reporting zero light".
	missingMark = "NA"
)

// header is the CSV column layout.
var header = []string{
	"timestamp", "robot",
	"sensor_left", "sensor_right",
	"motor_left", "motor_right",
	"liveness",
}

// CSVSink implements ports.FrameSink on a timestamped CSV file. Rows are
// buffered and flushed to disk every flushEvery frames, bounding data
// loss on a crash without paying a sync per tick.
type CSVSink struct {
	mu         sync.Mutex
	file       *os.File
	writer     *csv.Writer
	path       string
	flushEvery int
	pending    int
	logger     ports.Logger
}

// NewCSVSink creates the log directory if needed and opens a fresh file
// named after the start time, e.g. johnbot2_20260115_100000.csv.
func NewCSVSink(dir string, start time.Time, flushEvery int, logger ports.Logger) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, filePrefix+start.Format(timeLayout)+".csv")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create frame log: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("write frame log header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("flush frame log header: %w", err)
	}

	if flushEvery < 1 {
		flushEvery = 1
	}

	logger.Info("frame log created", ports.String("path", path))

	return &CSVSink{
		file:       file,
		writer:     writer,
		path:       path,
		flushEvery: flushEvery,
		logger:     logger,
	}, nil
}

// Path returns the log file's location.
func (s *CSVSink) Path() string {
	return s.path
}

// WriteFrame appends one row per robot for a single tick.
func (s *CSVSink) WriteFrame(at time.Time, snapshots []domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("frame log %s: %w", s.path, os.ErrClosed)
	}

	ts := formatTimestamp(at)
	for _, snap := range snapshots {
		if err := s.writer.Write(row(ts, snap)); err != nil {
			return fmt.Errorf("write frame row: %w", err)
		}
	}

	s.pending++
	if s.pending >= s.flushEvery {
		s.writer.Flush()
		if err := s.writer.Error(); err != nil {
			return fmt.Errorf("flush frame log: %w", err)
		}
		s.pending = 0
	}
	return nil
}

// Close flushes buffered rows and closes the file. Safe to call twice.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.file.Close()
	s.file = nil

	if flushErr != nil {
		return fmt.Errorf("flush frame log: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close frame log: %w", closeErr)
	}

	s.logger.Info("frame log closed", ports.String("path", s.path))
	return nil
}

// formatTimestamp renders a wall-clock time as unix seconds with
// microsecond precision.
func formatTimestamp(at time.Time) string {
	sec := float64(at.Unix()) + float64(at.Nanosecond())/1e9
	return strconv.FormatFloat(sec, 'f', 6, 64)
}

// row renders one robot's snapshot. Robots that never reported get
// explicit missing markers, never fabricated zeros.
func row(ts string, snap domain.Snapshot) []string {
	if !snap.HasSample {
		return []string{
			ts, strconv.Itoa(int(snap.Robot)),
			missingMark, missingMark,
			missingMark, missingMark,
			snap.Liveness.String(),
		}
	}
	return []string{
		ts, strconv.Itoa(int(snap.Robot)),
		formatSensor(snap.Sample.Left), formatSensor(snap.Sample.Right),
		strconv.Itoa(snap.Command.Left), strconv.Itoa(snap.Command.Right),
		snap.Liveness.String(),
	}
}

// formatSensor renders a sensor reading without trailing zero noise.
func formatSensor(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
