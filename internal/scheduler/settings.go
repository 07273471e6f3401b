package scheduler

import (
	"fmt"
	"time"

	"SenateLong/internal/model"
)

// CapitalBase selects the amount the plan is scaled to.
type CapitalBase string

const (
	CapitalEquity CapitalBase = "equity"
	CapitalCash   CapitalBase = "cash"
	CapitalFixed  CapitalBase = "fixed"
)

// Settings are the strategy knobs of the scheduler.
type Settings struct {
	PositionLengthDays     int
	RebalanceFrequencyDays int
	CapitalBase            CapitalBase
	FundSize               float64 // used with CapitalFixed
	RequireTradable        bool
	// OpenMarketAdjust advances a successful schedule by one day less when
	// the market is open, since due times are compared at market open.
	OpenMarketAdjust bool
	// MinWait floors every sleep so a stale clock cannot spin the loop.
	MinWait time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.PositionLengthDays <= 0 {
		s.PositionLengthDays = 60
	}
	if s.RebalanceFrequencyDays <= 0 {
		s.RebalanceFrequencyDays = 7
	}
	if s.CapitalBase == "" {
		s.CapitalBase = CapitalEquity
	}
	if s.MinWait <= 0 {
		s.MinWait = time.Minute
	}
	return s
}

func (s Settings) capital(acct *model.Account) (float64, error) {
	switch s.CapitalBase {
	case CapitalEquity:
		return acct.Equity, nil
	case CapitalCash:
		return acct.Cash, nil
	case CapitalFixed:
		return s.FundSize, nil
	default:
		return 0, fmt.Errorf("unknown capital base %q", s.CapitalBase)
	}
}
