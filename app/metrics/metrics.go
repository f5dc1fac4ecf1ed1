package metrics

import (
	"sync"
	"time"
)

// Collector accumulates process-wide counters, gauges and operation timings.
// All methods are safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timers   map[string]*timerStats
}

type timerStats struct {
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

func NewCollector() *Collector {
	return &Collector{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timers:   make(map[string]*timerStats),
	}
}

func (c *Collector) Inc(name string) {
	c.Add(name, 1)
}

func (c *Collector) Add(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

func (c *Collector) SetGauge(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

func (c *Collector) Observe(name string, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.timers[name]
	if !ok {
		stats = &timerStats{Min: elapsed, Max: elapsed}
		c.timers[name] = stats
	}
	stats.Count++
	stats.Total += elapsed
	if elapsed < stats.Min {
		stats.Min = elapsed
	}
	if elapsed > stats.Max {
		stats.Max = elapsed
	}
}

// Time runs fn and records its duration under the given timer name.
func (c *Collector) Time(name string, fn func() error) error {
	started := time.Now()
	err := fn()
	c.Observe(name, time.Since(started))
	if err != nil {
		c.Inc(name + "_errors")
	}
	return err
}

type TimerSnapshot struct {
	Count     int64   `json:"count"`
	AvgMillis float64 `json:"avg_ms"`
	MinMillis float64 `json:"min_ms"`
	MaxMillis float64 `json:"max_ms"`
}

type Snapshot struct {
	Counters map[string]int64         `json:"counters"`
	Gauges   map[string]float64       `json:"gauges"`
	Timers   map[string]TimerSnapshot `json:"timers"`
}

// GetSnapshot returns a copy of all recorded metrics. It has no side effects
// and can be called at any time from the ops endpoints.
func (c *Collector) GetSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Counters: make(map[string]int64, len(c.counters)),
		Gauges:   make(map[string]float64, len(c.gauges)),
		Timers:   make(map[string]TimerSnapshot, len(c.timers)),
	}
	for name, v := range c.counters {
		snap.Counters[name] = v
	}
	for name, v := range c.gauges {
		snap.Gauges[name] = v
	}
	for name, stats := range c.timers {
		avg := float64(0)
		if stats.Count > 0 {
			avg = float64(stats.Total.Milliseconds()) / float64(stats.Count)
		}
		snap.Timers[name] = TimerSnapshot{
			Count:     stats.Count,
			AvgMillis: avg,
			MinMillis: float64(stats.Min.Milliseconds()),
			MaxMillis: float64(stats.Max.Milliseconds()),
		}
	}
	return snap
}
