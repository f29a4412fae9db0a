package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for post operations. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	IncOperation(command string, result ResultLabel)
	ObserveOperationDuration(command string, d time.Duration)
	ObserveConversion(format string, d time.Duration)
	IncWriteBack()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncOperation(string, ResultLabel)             {}
func (NoopRecorder) ObserveOperationDuration(string, time.Duration) {}
func (NoopRecorder) ObserveConversion(string, time.Duration)       {}
func (NoopRecorder) IncWriteBack()                                 {}
