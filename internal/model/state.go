package model

import "time"

// Phase is the scheduler's position in its loop.
type Phase string

const (
	PhaseAwaitingRebalance Phase = "AWAITING_REBALANCE"
	PhaseRebalancing       Phase = "REBALANCING"
	PhaseIdle              Phase = "IDLE"
)

// RebalanceState is the mutable state of one running instance.
type RebalanceState struct {
	Phase           Phase
	Account         Account
	Clock           Clock
	NextRebalance   time.Time
	LastRebalanceAt time.Time
	LastCycleID     string
	LastCycleOK     bool
	UpdatedAt       time.Time
}
