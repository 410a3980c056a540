// Package logstorage keeps this process's recent log lines in memory so a
// failure notification can include them even when the central log service
// has not ingested them yet.
package logstorage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/structs"
)

const (
	DefaultMax    = 1000
	DefaultWindow = 30 * time.Minute
)

type Line struct {
	Message   string
	Timestamp time.Time
}

// Store is an io.Writer that retains complete lines, bounded by count and
// age. It implements structs.LogReader.
type Store struct {
	Now func() time.Time

	lines   []Line
	lock    sync.Mutex
	max     int
	partial bytes.Buffer
	window  time.Duration
}

func New(max int, window time.Duration) *Store {
	if max <= 0 {
		max = DefaultMax
	}

	if window <= 0 {
		window = DefaultWindow
	}

	return &Store{max: max, window: window}
}

// Write records each complete line in p. A trailing fragment is held until
// its newline arrives.
func (s *Store) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.partial.Write(p)

	for {
		data := s.partial.Bytes()

		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}

		s.append(s.now(), string(data[:i]))
		s.partial.Next(i + 1)
	}

	return len(p), nil
}

func (s *Store) Append(ts time.Time, message string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.append(ts, message)
}

func (s *Store) append(ts time.Time, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}

	s.lines = append(s.lines, Line{Message: message, Timestamp: ts})

	if over := len(s.lines) - s.max; over > 0 {
		s.lines = append(s.lines[:0:0], s.lines[over:]...)
	}
}

// LogsRecent returns the newest lines within the window, oldest first.
func (s *Store) LogsRecent(ctx context.Context, opts structs.LogsOptions) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	since := s.now().Add(-helpers.DefaultDuration(opts.Since, s.window))
	filter := helpers.DefaultString(opts.Filter, "")
	limit := helpers.DefaultInt(opts.Limit, 0)

	out := []string{}

	for _, l := range s.lines {
		if l.Timestamp.Before(since) {
			continue
		}

		if filter != "" && !strings.Contains(l.Message, filter) {
			continue
		}

		out = append(out, fmt.Sprintf("%s %s", l.Timestamp.UTC().Format(time.RFC3339), l.Message))
	}

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}

	return out, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Chain reads from each source in turn and returns the first non-empty
// result. When every source fails the last error is returned.
type Chain []structs.LogReader

func (c Chain) LogsRecent(ctx context.Context, opts structs.LogsOptions) ([]string, error) {
	var last error

	for _, r := range c {
		if r == nil {
			continue
		}

		lines, err := r.LogsRecent(ctx, opts)
		if err != nil {
			last = err
			continue
		}

		if len(lines) > 0 {
			return lines, nil
		}
	}

	if last != nil {
		return nil, last
	}

	return []string{}, nil
}
