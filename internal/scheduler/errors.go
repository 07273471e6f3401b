package scheduler

import "fmt"

// Rebalance stages.
const (
	StageLiquidate = "liquidate"
	StageAccount   = "account"
	StagePlan      = "plan"
	StageSubmit    = "submit"
)

// RebalanceError aborts a rebalance cycle. The schedule collapses to the
// next market open.
type RebalanceError struct {
	Stage string
	Err   error
}

func (e *RebalanceError) Error() string {
	return fmt.Sprintf("rebalance %s: %v", e.Stage, e.Err)
}

func (e *RebalanceError) Unwrap() error { return e.Err }
