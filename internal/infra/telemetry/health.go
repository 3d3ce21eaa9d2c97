package telemetry

import (
	"sort"
	"sync"
	"time"
)

const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
)

// HealthTracker aggregates heartbeats from background loops. A loop that
// stops beating for longer than its stale window degrades the report.
type HealthTracker struct {
	mu     sync.RWMutex
	checks map[string]*Heartbeat
	now    func() time.Time
}

type Heartbeat struct {
	tracker    *HealthTracker
	name       string
	staleAfter time.Duration
	lastBeat   time.Time
}

type HealthCheck struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	LastBeat   time.Time `json:"lastBeat"`
	StaleAfter string    `json:"staleAfter"`
}

type HealthReport struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks,omitempty"`
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		checks: make(map[string]*Heartbeat),
		now:    time.Now,
	}
}

// Register adds a named loop. The registration time counts as its first beat.
func (t *HealthTracker) Register(name string, staleAfter time.Duration) *Heartbeat {
	t.mu.Lock()
	defer t.mu.Unlock()

	beat := &Heartbeat{
		tracker:    t,
		name:       name,
		staleAfter: staleAfter,
		lastBeat:   t.now(),
	}
	t.checks[name] = beat
	return beat
}

func (h *Heartbeat) Beat() {
	if h == nil || h.tracker == nil {
		return
	}
	h.tracker.mu.Lock()
	h.lastBeat = h.tracker.now()
	h.tracker.mu.Unlock()
}

// Stop removes the heartbeat from the report.
func (h *Heartbeat) Stop() {
	if h == nil || h.tracker == nil {
		return
	}
	h.tracker.mu.Lock()
	if current, ok := h.tracker.checks[h.name]; ok && current == h {
		delete(h.tracker.checks, h.name)
	}
	h.tracker.mu.Unlock()
}

func (t *HealthTracker) Report() HealthReport {
	if t == nil {
		return HealthReport{Status: HealthStatusOK}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	report := HealthReport{Status: HealthStatusOK}
	for _, beat := range t.checks {
		check := HealthCheck{
			Name:       beat.name,
			Status:     HealthStatusOK,
			LastBeat:   beat.lastBeat,
			StaleAfter: beat.staleAfter.String(),
		}
		if beat.staleAfter > 0 && now.Sub(beat.lastBeat) > beat.staleAfter {
			check.Status = HealthStatusDegraded
			report.Status = HealthStatusDegraded
		}
		report.Checks = append(report.Checks, check)
	}
	sort.Slice(report.Checks, func(i, j int) bool {
		return report.Checks[i].Name < report.Checks[j].Name
	})
	return report
}
