package measure

import (
	"sort"
	"sync"
	"time"
)

// DefaultMeasure keeps its metrics in memory.
type DefaultMeasure struct {
	mu      sync.RWMutex
	metrics map[string]*DefaultMetric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{metrics: make(map[string]*DefaultMetric)}
}

// AddMetric registers a step. Registering a name twice resets its metric.
func (m *DefaultMeasure) AddMetric(name string, concurrent int) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := newDefaultMetric(concurrent)
	m.metrics[name] = mt

	return mt
}

// GetMetric returns nil when name was never registered.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mt, ok := m.metrics[name]
	if !ok {
		return nil
	}

	return mt
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Metric, len(m.metrics))
	for name, mt := range m.metrics {
		out[name] = mt
	}

	return out
}

// StepSummary is the digest of a step metric.
type StepSummary struct {
	Name    string
	Count   int64
	Average time.Duration
	Slowest time.Duration
	Total   time.Duration
}

// Summary returns the digest of every step that processed something, sorted by name.
func Summary(msr Measure) []StepSummary {
	var out []StepSummary
	for name, mt := range msr.AllMetrics() {
		if mt.Count() == 0 {
			continue
		}
		out = append(out, StepSummary{
			Name:    name,
			Count:   mt.Count(),
			Average: mt.Average(),
			Slowest: mt.Slowest(),
			Total:   mt.Total(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}

var _ Measure = (*DefaultMeasure)(nil)
