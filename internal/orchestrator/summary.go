package orchestrator

import (
	"sync"
	"time"

	"github.com/priceduck/pricewatch/internal/scrape"
)

// AttemptFailure is one failed attempt in the run summary.
type AttemptFailure struct {
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	RegionCode  string        `json:"region_code,omitempty"`
	Reason      scrape.Reason `json:"reason"`
	Notes       string        `json:"notes,omitempty"`
}

// Snapshot is a point-in-time copy of the run summary, safe to serialize.
type Snapshot struct {
	Attempts   int              `json:"attempts"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Failures   []AttemptFailure `json:"failures,omitempty"`
}

// Summary aggregates attempt outcomes across workers.
type Summary struct {
	mu         sync.Mutex
	attempts   int
	succeeded  int
	failed     int
	failures   []AttemptFailure
	startedAt  time.Time
	finishedAt *time.Time
}

func newSummary() *Summary {
	return &Summary{startedAt: time.Now().UTC()}
}

func (s *Summary) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	s.succeeded++
}

func (s *Summary) recordFailure(f AttemptFailure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	s.failed++
	s.failures = append(s.failures, f)
}

func (s *Summary) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.finishedAt = &now
}

// Snapshot copies the current counters. Callable while the run is in flight.
func (s *Summary) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Attempts:  s.attempts,
		Succeeded: s.succeeded,
		Failed:    s.failed,
		StartedAt: s.startedAt,
	}
	if s.finishedAt != nil {
		t := *s.finishedAt
		snap.FinishedAt = &t
	}
	snap.Failures = make([]AttemptFailure, len(s.failures))
	copy(snap.Failures, s.failures)
	return snap
}
