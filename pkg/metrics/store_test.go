package metrics_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicedesk/voicedesk/pkg/metrics"
)

func newStore(t *testing.T) *metrics.Store {
	t.Helper()
	s, err := metrics.New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestRecordAndStatistics(t *testing.T) {
	s := newStore(t)

	for _, v := range []float64{1, 2, 3} {
		require.NoError(t, s.Record("latency", v, nil))
	}

	records, err := s.Query(metrics.Filter{Name: "latency"})
	require.NoError(t, err)
	require.Len(t, records, 3)

	stats := metrics.Statistics(records)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 3.0, stats.Max)
	assert.Equal(t, 2.0, stats.Average)
}

func TestStatisticsSkipsNonNumeric(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Record("status", "ok", nil))
	require.NoError(t, s.Record("status", 5, nil))

	records, err := s.Query(metrics.Filter{Name: "status"})
	require.NoError(t, err)

	stats := metrics.Statistics(records)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 5.0, stats.Average)
}

func TestStatisticsEmpty(t *testing.T) {
	assert.Equal(t, metrics.Stats{}, metrics.Statistics(nil))
}

func TestQueryFilters(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.RecordAt("a", 1, map[string]string{"call_id": "x"}, 100))
	require.NoError(t, s.RecordAt("a", 2, map[string]string{"call_id": "y"}, 200))
	require.NoError(t, s.RecordAt("b", 3, map[string]string{"call_id": "x"}, 300))

	t.Run("by name", func(t *testing.T) {
		records, err := s.Query(metrics.Filter{Name: "a"})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("by time range", func(t *testing.T) {
		records, err := s.Query(metrics.Filter{Start: 150, End: 250})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "a", records[0].Name)
	})

	t.Run("by tags", func(t *testing.T) {
		records, err := s.Query(metrics.Filter{Tags: map[string]string{"call_id": "x"}})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("conjunctive", func(t *testing.T) {
		records, err := s.Query(metrics.Filter{Name: "a", Tags: map[string]string{"call_id": "y"}})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 2.0, records[0].Value)
	})
}

func TestConcurrentRecorders(t *testing.T) {
	s := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = s.Record("turns", 1, nil)
			}
		}()
	}
	wg.Wait()

	records, err := s.Query(metrics.Filter{Name: "turns"})
	require.NoError(t, err)
	assert.Len(t, records, 80, "no records may be lost to interleaved writes")
}

func TestDayPartitionedFile(t *testing.T) {
	dir := t.TempDir()
	s, err := metrics.New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Record("x", 1, nil))

	matches, err := filepath.Glob(filepath.Join(dir, "metrics_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"x"`)
}

func TestCallMetrics(t *testing.T) {
	s := newStore(t)
	cm := metrics.NewCallMetrics(s)

	require.NoError(t, cm.RecordCallDuration("abc", 30))
	require.NoError(t, cm.RecordCallDuration("def", 60))
	require.NoError(t, cm.RecordError("abc", "ai_processing"))

	stats, err := cm.CallStatistics(0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 45.0, stats.Average)

	rate, err := cm.ErrorRate(0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rate)

	t.Run("zero calls means zero rate", func(t *testing.T) {
		empty := metrics.NewCallMetrics(newStore(t))
		rate, err := empty.ErrorRate(0)
		require.NoError(t, err)
		assert.Zero(t, rate)
	})
}
