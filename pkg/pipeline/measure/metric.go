package measure

import (
	"sync"
	"time"
)

type waitStat struct {
	sum   time.Duration
	count int64
}

// DefaultMetric is a Metric safe for concurrent use.
type DefaultMetric struct {
	mu         sync.Mutex
	concurrent int
	count      int64
	sum        time.Duration
	slowest    time.Duration
	total      time.Duration
	waits      map[string]*waitStat
}

func newDefaultMetric(concurrent int) *DefaultMetric {
	if concurrent <= 0 {
		concurrent = 1
	}

	return &DefaultMetric{concurrent: concurrent, waits: make(map[string]*waitStat)}
}

func (mt *DefaultMetric) Record(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.count++
	mt.sum += elapsed
	if elapsed > mt.slowest {
		mt.slowest = elapsed
	}
}

func (mt *DefaultMetric) RecordWait(from string, waited time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	stat, ok := mt.waits[from]
	if !ok {
		stat = &waitStat{}
		mt.waits[from] = stat
	}
	stat.sum += waited
	stat.count++
}

func (mt *DefaultMetric) Count() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.count
}

func (mt *DefaultMetric) Average() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.count == 0 {
		return 0
	}

	return round(mt.sum / time.Duration(mt.count))
}

func (mt *DefaultMetric) Slowest() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return round(mt.slowest)
}

func (mt *DefaultMetric) AverageWaits() map[string]time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]time.Duration, len(mt.waits))
	for from, stat := range mt.waits {
		if stat.count == 0 {
			out[from] = 0
			continue
		}
		out[from] = round(stat.sum / time.Duration(stat.count*int64(mt.concurrent)))
	}

	return out
}

func (mt *DefaultMetric) SetTotal(total time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.total = total
}

func (mt *DefaultMetric) Total() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

// round drops precision the reader does not care about.
func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		return d.Round(time.Minute)
	case d > time.Second:
		return d.Round(time.Millisecond)
	case d > time.Millisecond:
		return d.Round(time.Microsecond)
	default:
		return d
	}
}

var _ Metric = (*DefaultMetric)(nil)
