// Package measure records how long the steps of a pipeline take.
package measure

import "time"

// Measure holds one Metric per step, keyed by step name.
type Measure interface {
	AddMetric(name string, concurrent int) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the durations of one step.
//
// Record is called once per element the step produced, RecordWait once per
// element it received from the step named from.
type Metric interface {
	Record(elapsed time.Duration)
	RecordWait(from string, waited time.Duration)
	Count() int64
	Average() time.Duration
	Slowest() time.Duration
	// AverageWaits returns the average wait per input step, divided by the
	// concurrency of the step.
	AverageWaits() map[string]time.Duration
	SetTotal(total time.Duration)
	Total() time.Duration
}
