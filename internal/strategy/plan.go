package strategy

import (
	"math"
	"time"

	"SenateLong/internal/model"
)

// FilterRecords keeps purchases dated on or after since.
func FilterRecords(records []model.TransactionRecord, since time.Time) []model.TransactionRecord {
	out := make([]model.TransactionRecord, 0, len(records))
	for _, r := range records {
		if r.Type != model.TxPurchase || r.Amount <= 0 {
			continue
		}
		if !since.IsZero() && r.TransactionDate.Before(since) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BuildPlan weights every qualifying record by its share of the summed
// amounts and scales it to capital. Records for the same ticker are not
// merged. An empty set or non-positive capital yields an empty plan.
func BuildPlan(records []model.TransactionRecord, since time.Time, capital float64) []model.OrderPlanEntry {
	qualifying := FilterRecords(records, since)
	if len(qualifying) == 0 || capital <= 0 {
		return nil
	}

	var total int64
	for _, r := range qualifying {
		total += r.Amount
	}
	if total <= 0 {
		return nil
	}

	plan := make([]model.OrderPlanEntry, len(qualifying))
	for i, r := range qualifying {
		plan[i] = model.OrderPlanEntry{
			Ticker:         r.Ticker,
			WeightedAmount: float64(r.Amount) / float64(total) * capital,
		}
	}
	return plan
}

// PlanTotal sums the weighted amounts of a plan.
func PlanTotal(plan []model.OrderPlanEntry) float64 {
	sum := 0.0
	for _, e := range plan {
		sum += e.WeightedAmount
	}
	return sum
}

// RoundCents rounds to two decimal places, half away from zero.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
