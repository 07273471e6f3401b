package recorder

import "time"

// Cycle outcomes.
const (
	CycleOK     = "OK"
	CycleFailed = "FAILED"
)

// Order outcomes.
const (
	OrderSubmitted = "SUBMITTED"
	OrderSkipped   = "SKIPPED"
	OrderRejected  = "REJECTED"
)

// CycleRecord is one rebalance attempt.
type CycleRecord struct {
	ID        string
	StartedAt time.Time
	Status    string
	Stage     string // failing stage, empty on success
	Capital   float64
	Planned   int
	Submitted int
	Skipped   int
	Rejected  int
	NextDue   time.Time
	Error     string
}

// OrderRecord is one planned buy and what became of it.
type OrderRecord struct {
	CycleID  string
	Symbol   string
	Notional float64
	Status   string
	OrderID  string
	Reason   string
}

// Recorder appends rebalance history to a journal. It is never read back
// to restore scheduler state.
type Recorder interface {
	RecordCycle(rec *CycleRecord) error
	RecordOrder(rec *OrderRecord) error
	Close() error
}
