package fund

import (
	"sync"
	"time"

	"SenateLong/internal/model"
)

// Tracker owns the scheduler's RebalanceState. The scheduler loop is the
// only writer; readers such as the status reporter take snapshots.
type Tracker struct {
	mu    sync.Mutex
	state model.RebalanceState
	now   func() time.Time
}

// NewTracker creates a Tracker in the awaiting-rebalance phase.
func NewTracker() *Tracker {
	return &Tracker{
		state: model.RebalanceState{Phase: model.PhaseAwaitingRebalance},
		now:   time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() model.RebalanceState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) update(fn func(s *model.RebalanceState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.state)
	t.state.UpdatedAt = t.now()
}

// SetPhase records the loop's phase.
func (t *Tracker) SetPhase(p model.Phase) {
	t.update(func(s *model.RebalanceState) { s.Phase = p })
}

// SetClock stores the latest market clock.
func (t *Tracker) SetClock(c model.Clock) {
	t.update(func(s *model.RebalanceState) { s.Clock = c })
}

// SetAccount stores the latest account snapshot.
func (t *Tracker) SetAccount(a model.Account) {
	t.update(func(s *model.RebalanceState) { s.Account = a })
}

// SetNextRebalance schedules the next rebalance.
func (t *Tracker) SetNextRebalance(at time.Time) {
	t.update(func(s *model.RebalanceState) { s.NextRebalance = at })
}

// RecordCycle stores the outcome of a rebalance attempt.
func (t *Tracker) RecordCycle(id string, at time.Time, ok bool, next time.Time) {
	t.update(func(s *model.RebalanceState) {
		s.LastCycleID = id
		s.LastRebalanceAt = at
		s.LastCycleOK = ok
		s.NextRebalance = next
	})
}
