package maint

import (
	"sync"
	"time"
)

// StepStats stores timing for one named step
type StepStats struct {
	Name      string
	Count     int
	Failures  int
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// StepMetrics collects per-step timings for a workflow run
type StepMetrics struct {
	mu    sync.Mutex
	order []string
	steps map[string]*StepStats
}

// NewStepMetrics creates an empty collector
func NewStepMetrics() *StepMetrics {
	return &StepMetrics{steps: make(map[string]*StepStats)}
}

// Record adds one execution of step
func (m *StepMetrics) Record(step string, d time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.steps[step]
	if !ok {
		s = &StepStats{Name: step}
		m.steps[step] = s
		m.order = append(m.order, step)
	}

	s.Count++
	if failed {
		s.Failures++
	}
	s.TotalTime += d
	if s.MinTime == 0 || d < s.MinTime {
		s.MinTime = d
	}
	if d > s.MaxTime {
		s.MaxTime = d
	}
}

// Snapshot returns a copy of the stats in first-recorded order
func (m *StepMetrics) Snapshot() []StepStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]StepStats, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, *m.steps[name])
	}
	return out
}

// Total returns the summed duration of every recorded step
func (m *StepMetrics) Total() time.Duration {
	var total time.Duration
	for _, s := range m.Snapshot() {
		total += s.TotalTime
	}
	return total
}

// Reset clears all recorded steps
func (m *StepMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.steps = make(map[string]*StepStats)
}
