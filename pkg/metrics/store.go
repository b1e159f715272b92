// Package metrics records timestamped, tagged measurements to
// day-partitioned JSON files and answers simple filtered queries over
// them. It is built for low-volume observability, not high-throughput
// telemetry: every write rewrites the current day's file.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Metric is one recorded measurement. Value is numeric for anything that
// feeds statistics; string values are allowed and skipped by Statistics.
type Metric struct {
	Name      string            `json:"name"`
	Value     any               `json:"value"`
	Timestamp float64           `json:"timestamp"` // epoch seconds
	Tags      map[string]string `json:"tags"`
}

// Filter selects metrics in Query. Zero fields match everything; set
// fields are combined conjunctively.
type Filter struct {
	Name  string
	Start float64 // epoch seconds, inclusive
	End   float64 // epoch seconds, inclusive
	Tags  map[string]string
}

// Stats summarizes the numeric values of a metric slice.
type Stats struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// Store appends metrics to one JSON array file per calendar day. All
// writes go through a mutex and commit via temp file + rename, so
// concurrent recorders within the process cannot lose records.
type Store struct {
	dir string

	mu          sync.Mutex
	currentDate string
	path        string

	now func() time.Time
}

// New creates a metrics store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create metrics dir: %w", err)
	}
	s := &Store{dir: dir, now: time.Now}
	s.rotate()
	return s, nil
}

// Record appends a metric stamped with the current time.
func (s *Store) Record(name string, value any, tags map[string]string) error {
	return s.RecordAt(name, value, tags, float64(s.now().UnixNano())/1e9)
}

// RecordAt appends a metric with an explicit epoch-seconds timestamp.
func (s *Store) RecordAt(name string, value any, tags map[string]string, ts float64) error {
	if tags == nil {
		tags = map[string]string{}
	}
	m := Metric{Name: name, Value: value, Timestamp: ts, Tags: tags}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rotate()

	existing, err := s.readFile()
	if err != nil {
		return err
	}
	existing = append(existing, m)

	data, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit metrics: %w", err)
	}
	return nil
}

// Query returns the current day's metrics matching the filter, in
// recorded order.
func (s *Store) Query(f Filter) ([]Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rotate()

	all, err := s.readFile()
	if err != nil {
		return nil, err
	}

	var out []Metric
	for _, m := range all {
		if f.Name != "" && m.Name != f.Name {
			continue
		}
		if f.Start != 0 && m.Timestamp < f.Start {
			continue
		}
		if f.End != 0 && m.Timestamp > f.End {
			continue
		}
		if !tagsMatch(m.Tags, f.Tags) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Statistics computes count/min/max/average over the numeric values in
// metrics. Non-numeric values are skipped silently.
func Statistics(metrics []Metric) Stats {
	var values []float64
	for _, m := range metrics {
		if v, ok := numericValue(m.Value); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Stats{}
	}

	stats := Stats{Count: len(values), Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Average = sum / float64(len(values))
	return stats
}

// rotate points the store at the current day's file. Callers must hold
// the mutex (or be the constructor).
func (s *Store) rotate() {
	date := s.now().Format("20060102")
	if date == s.currentDate {
		return
	}
	s.currentDate = date
	s.path = filepath.Join(s.dir, "metrics_"+date+".json")
}

func (s *Store) readFile() ([]Metric, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}

	var metrics []Metric
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, fmt.Errorf("parse metrics file %s: %w", s.path, err)
	}
	return metrics, nil
}

func tagsMatch(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// numericValue extracts a float64 from the JSON-decoded or directly
// recorded value representations.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
