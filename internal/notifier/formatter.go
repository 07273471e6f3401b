package notifier

import (
	"fmt"
	"strings"
	"time"

	"SenateLong/internal/model"
)

const stampLayout = "2006-01-02 15:04:05 MST"

// FormatFundDetails renders the account and schedule block printed after
// every rebalance and on the status schedule.
func FormatFundDetails(state model.RebalanceState, openPositions int, now time.Time) string {
	acct := state.Account
	var b strings.Builder
	b.WriteString("\n========== Fund Details ==========\n")
	b.WriteString(fmt.Sprintf("Current Time: %s\n", now.Format(stampLayout)))
	b.WriteString(fmt.Sprintf("Fund Equity: $%.2f\n", acct.Equity))
	b.WriteString(fmt.Sprintf("Last Equity: $%.2f\n", acct.LastEquity))
	b.WriteString(fmt.Sprintf("Cash: $%.2f\n", acct.Cash))
	b.WriteString(fmt.Sprintf("Fees: $%.2f\n", acct.AccruedFees))
	b.WriteString(fmt.Sprintf("Open Positions: %d\n", openPositions))
	b.WriteString(fmt.Sprintf("Currency: %s\n", acct.Currency))
	b.WriteString(fmt.Sprintf("Market: %s\n", marketStatus(state.Clock)))
	if state.NextRebalance.IsZero() {
		b.WriteString("Next Rebalance: pending\n")
	} else {
		b.WriteString(fmt.Sprintf("Next Rebalance: %s\n", state.NextRebalance.Format(stampLayout)))
	}
	b.WriteString("==================================\n")
	return b.String()
}

func marketStatus(c model.Clock) string {
	if c.Timestamp.IsZero() {
		return "unknown"
	}
	if c.IsOpen {
		return "open"
	}
	return fmt.Sprintf("closed (opens %s)", c.NextOpen.Format(stampLayout))
}

// CycleSummary describes one rebalance attempt.
type CycleSummary struct {
	ID        string
	Capital   float64
	Planned   int
	Submitted int
	Skipped   int
	Rejected  int
	Exposure  float64
	NextDue   time.Time
	Err       error
}

// FormatCycleSummary renders a one-paragraph account of a rebalance.
func FormatCycleSummary(s CycleSummary) string {
	var b strings.Builder
	if s.Err != nil {
		b.WriteString(fmt.Sprintf("Rebalance %s FAILED: %v\n", shortID(s.ID), s.Err))
		b.WriteString(fmt.Sprintf("Retrying at next market open: %s\n", s.NextDue.Format(stampLayout)))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Rebalance %s complete\n", shortID(s.ID)))
	b.WriteString(fmt.Sprintf("Capital: $%.2f across %d planned orders\n", s.Capital, s.Planned))
	b.WriteString(fmt.Sprintf("Submitted: %d | Skipped: %d | Rejected: %d\n", s.Submitted, s.Skipped, s.Rejected))
	b.WriteString(fmt.Sprintf("Total exposure now: $%.2f\n", s.Exposure))
	b.WriteString(fmt.Sprintf("Next rebalance: %s\n", s.NextDue.Format(stampLayout)))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
