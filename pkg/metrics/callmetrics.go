package metrics

// Metric names emitted per call turn.
const (
	MetricCallDuration    = "call_duration"
	MetricRecognitionTime = "speech_recognition_time"
	MetricProcessingTime  = "ai_processing_time"
	MetricErrorCount      = "error_count"
)

// CallMetrics records the per-call measurements the webhook flow emits,
// tagging every record with the call identifier.
type CallMetrics struct {
	store *Store
}

// NewCallMetrics wraps a store with call-oriented helpers.
func NewCallMetrics(store *Store) *CallMetrics {
	return &CallMetrics{store: store}
}

// RecordCallDuration records the total duration of a call in seconds.
func (c *CallMetrics) RecordCallDuration(callID string, seconds float64) error {
	return c.store.Record(MetricCallDuration, seconds, map[string]string{"call_id": callID})
}

// RecordRecognitionTime records the time spent in speech recognition.
func (c *CallMetrics) RecordRecognitionTime(callID string, seconds float64) error {
	return c.store.Record(MetricRecognitionTime, seconds, map[string]string{"call_id": callID})
}

// RecordProcessingTime records the time spent in model calls for one turn.
func (c *CallMetrics) RecordProcessingTime(callID string, seconds float64) error {
	return c.store.Record(MetricProcessingTime, seconds, map[string]string{"call_id": callID})
}

// RecordError counts one error occurrence by type.
func (c *CallMetrics) RecordError(callID, errorType string) error {
	return c.store.Record(MetricErrorCount, 1, map[string]string{
		"call_id":    callID,
		"error_type": errorType,
	})
}

// CallStatistics summarizes call durations recorded since the given
// epoch-seconds timestamp (zero means the whole day).
func (c *CallMetrics) CallStatistics(since float64) (Stats, error) {
	records, err := c.store.Query(Filter{Name: MetricCallDuration, Start: since})
	if err != nil {
		return Stats{}, err
	}
	return Statistics(records), nil
}

// ErrorRate returns errors per completed call since the given timestamp.
// Zero calls yields a zero rate.
func (c *CallMetrics) ErrorRate(since float64) (float64, error) {
	calls, err := c.store.Query(Filter{Name: MetricCallDuration, Start: since})
	if err != nil {
		return 0, err
	}
	errors, err := c.store.Query(Filter{Name: MetricErrorCount, Start: since})
	if err != nil {
		return 0, err
	}
	if len(calls) == 0 {
		return 0, nil
	}
	return float64(len(errors)) / float64(len(calls)), nil
}
