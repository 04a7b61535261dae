package health

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds each check.
const DefaultTimeout = 5 * time.Second

// Report pairs a checker's name with its result.
type Report struct {
	Name   string `json:"name" yaml:"name"`
	Result `yaml:",inline"`
}

// Manager runs checks in parallel.
type Manager struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
}

// NewManager creates a manager using DefaultTimeout.
func NewManager(checkers ...Checker) *Manager {
	return &Manager{checkers: checkers, timeout: DefaultTimeout}
}

// WithTimeout sets the per-check timeout.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return m
}

// Add registers a checker.
func (m *Manager) Add(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
}

// Check runs every checker and returns the reports in registration order.
// A checker that returns nil is reported unhealthy.
func (m *Manager) Check(ctx context.Context) []Report {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	timeout := m.timeout
	m.mu.RUnlock()

	reports := make([]Report, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			res := c.Check(checkCtx)
			if res == nil {
				res = Unhealthy("check returned no result")
			}
			if res.Latency == 0 {
				res.Latency = time.Since(start)
			}
			reports[i] = Report{Name: c.Name(), Result: *res}
		}()
	}
	wg.Wait()
	return reports
}

// Overall is unhealthy if any report is, else degraded if any report is,
// else healthy.
func Overall(reports []Report) Status {
	status := StatusHealthy
	for _, r := range reports {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
