package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"SenateLong/internal/collector"
	"SenateLong/internal/model"
	"SenateLong/internal/notifier"
	"SenateLong/internal/recorder"
	"SenateLong/internal/strategy"
)

// SubmitResult counts what happened to a plan's entries.
type SubmitResult struct {
	Planned   int
	Submitted int
	Skipped   int
	Rejected  int
}

// Rebalance runs one cycle: liquidate everything, size the plan to the
// capital base, submit the buys. It returns the next due time: the
// schedule advanced by the rebalance frequency on success, the next market
// open on any failure.
func (s *Scheduler) Rebalance(ctx context.Context) time.Time {
	id := s.newID()
	log := s.Log.With().Str("cycle_id", id).Logger()
	state := s.Tracker.Snapshot()
	clock := state.Clock

	s.Tracker.SetPhase(model.PhaseRebalancing)
	log.Info().Msg("rebalancing fund")

	summary, err := s.cycle(ctx, id, log)
	var next time.Time
	if err != nil {
		next = clock.NextOpen
		if errors.Is(err, context.Canceled) {
			log.Info().Err(err).Msg("rebalance interrupted")
		} else {
			log.Error().Err(err).Time("retry_at", next).Msg("rebalance failed, rescheduling at next market open")
		}
	} else {
		next = s.advance(state.NextRebalance, clock)
		log.Info().Time("next_rebalance", next).Msg("rebalance complete")
	}
	s.Tracker.RecordCycle(id, clock.Timestamp, err == nil, next)

	summary.ID = id
	summary.NextDue = next
	summary.Err = err
	s.journalCycle(log, clock.Timestamp, summary)
	s.notify(ctx, notifier.FormatCycleSummary(summary))
	return next
}

func (s *Scheduler) cycle(ctx context.Context, id string, log zerolog.Logger) (notifier.CycleSummary, error) {
	var summary notifier.CycleSummary

	if err := s.LiquidateAll(ctx); err != nil {
		return summary, &RebalanceError{Stage: StageLiquidate, Err: err}
	}
	acct, err := s.Broker.GetAccount(ctx)
	if err != nil {
		return summary, &RebalanceError{Stage: StageAccount, Err: err}
	}
	s.Tracker.SetAccount(*acct)

	capital, err := s.cfg.capital(acct)
	if err != nil {
		return summary, &RebalanceError{Stage: StageAccount, Err: err}
	}
	summary.Capital = capital

	plan, err := s.BuildPlan(ctx, capital)
	if err != nil {
		return summary, &RebalanceError{Stage: StagePlan, Err: err}
	}
	if len(plan) == 0 {
		log.Info().Float64("capital", capital).Msg("no qualifying purchases, holding cash this cycle")
	}

	res, err := s.SubmitPlan(ctx, id, plan)
	summary.Planned = res.Planned
	summary.Submitted = res.Submitted
	summary.Skipped = res.Skipped
	summary.Rejected = res.Rejected
	if err != nil {
		return summary, err
	}

	if acct, err := s.Broker.GetAccount(ctx); err != nil {
		log.Warn().Err(err).Msg("account unavailable after submit")
	} else {
		s.Tracker.SetAccount(*acct)
		summary.Exposure = acct.LongMarketValue
	}
	log.Info().Float64("exposure", summary.Exposure).Msg("total exposure")
	return summary, nil
}

// LiquidateAll closes every position, cancelling open orders first.
func (s *Scheduler) LiquidateAll(ctx context.Context) error {
	s.Log.Info().Msg("liquidating all positions")
	if err := s.Broker.CloseAllPositions(ctx, true); err != nil {
		return fmt.Errorf("close all positions: %w", err)
	}
	return nil
}

// BuildPlan scrapes purchases within the position window and weights them
// to capital. An empty plan with a nil error means there is nothing to buy.
func (s *Scheduler) BuildPlan(ctx context.Context, capital float64) ([]model.OrderPlanEntry, error) {
	days := s.cfg.PositionLengthDays
	records, err := s.Source.Scrape(ctx, days, model.TxPurchase)
	if err != nil {
		return nil, fmt.Errorf("scrape disclosures: %w", err)
	}
	since := collector.LookbackCutoff(s.marketNow(), days)
	plan := strategy.BuildPlan(records, since, capital)
	s.Log.Info().Int("transactions", len(records)).Int("tickers", len(plan)).
		Float64("capital", capital).Msg("order plan built")
	return plan, nil
}

// SubmitPlan places a notional market buy for each eligible entry.
// Ineligible assets are skipped and individual rejections are logged; the
// plan fails only when every attempted order was rejected. A cancelled ctx
// stops before the next entry; Run never cancels it, since Rebalance runs
// detached from shutdown, so this only applies to direct callers.
func (s *Scheduler) SubmitPlan(ctx context.Context, cycleID string, plan []model.OrderPlanEntry) (SubmitResult, error) {
	res := SubmitResult{Planned: len(plan)}
	var lastErr error

	for _, entry := range plan {
		if err := ctx.Err(); err != nil {
			return res, &RebalanceError{Stage: StageSubmit, Err: err}
		}
		notional := strategy.RoundCents(entry.WeightedAmount)
		log := s.Log.With().Str("cycle_id", cycleID).Str("symbol", entry.Ticker).Float64("notional", notional).Logger()
		rec := &recorder.OrderRecord{CycleID: cycleID, Symbol: entry.Ticker, Notional: notional}

		asset, err := s.Broker.GetAsset(ctx, entry.Ticker)
		if err != nil {
			res.Rejected++
			lastErr = err
			log.Warn().Err(err).Msg("asset lookup failed")
			rec.Status, rec.Reason = recorder.OrderRejected, err.Error()
			s.journalOrder(log, rec)
			continue
		}
		if reason := s.ineligible(asset); reason != "" {
			res.Skipped++
			log.Info().Str("reason", reason).Msg("skipping asset")
			rec.Status, rec.Reason = recorder.OrderSkipped, reason
			s.journalOrder(log, rec)
			continue
		}

		order, err := s.Broker.SubmitOrder(ctx, model.OrderRequest{
			Symbol:      entry.Ticker,
			Notional:    notional,
			Side:        model.SideBuy,
			TimeInForce: model.TimeInForceDay,
		})
		if err != nil {
			res.Rejected++
			lastErr = err
			log.Warn().Err(err).Msg("order rejected")
			rec.Status, rec.Reason = recorder.OrderRejected, err.Error()
			s.journalOrder(log, rec)
			continue
		}
		res.Submitted++
		ev := log.Info().Str("order_id", order.ID).Str("status", order.Status)
		if order.FilledAvgPrice > 0 {
			ev = ev.Float64("filled_avg_price", order.FilledAvgPrice)
		}
		ev.Msg("buy submitted")
		rec.Status, rec.OrderID = recorder.OrderSubmitted, order.ID
		s.journalOrder(log, rec)
	}

	if res.Rejected > 0 && res.Submitted == 0 {
		return res, &RebalanceError{Stage: StageSubmit,
			Err: fmt.Errorf("all %d attempted orders rejected: %w", res.Rejected, lastErr)}
	}
	return res, nil
}

func (s *Scheduler) ineligible(a *model.Asset) string {
	if !a.Fractionable {
		return "not fractionable"
	}
	if s.cfg.RequireTradable && !a.Tradable {
		return "not tradable"
	}
	return ""
}

// advance moves a successful schedule forward. A schedule that would still
// be due is re-based on the current market time.
func (s *Scheduler) advance(prev time.Time, clock model.Clock) time.Time {
	days := s.cfg.RebalanceFrequencyDays
	if s.cfg.OpenMarketAdjust && clock.IsOpen && days > 1 {
		days--
	}
	next := prev.AddDate(0, 0, days)
	if !next.After(clock.Timestamp) {
		next = clock.Timestamp.AddDate(0, 0, days)
	}
	return next
}

func (s *Scheduler) marketNow() time.Time {
	if ts := s.Tracker.Snapshot().Clock.Timestamp; !ts.IsZero() {
		return ts
	}
	return s.now()
}

func (s *Scheduler) journalCycle(log zerolog.Logger, at time.Time, sum notifier.CycleSummary) {
	rec := &recorder.CycleRecord{
		ID:        sum.ID,
		StartedAt: at,
		Status:    recorder.CycleOK,
		Capital:   sum.Capital,
		Planned:   sum.Planned,
		Submitted: sum.Submitted,
		Skipped:   sum.Skipped,
		Rejected:  sum.Rejected,
		NextDue:   sum.NextDue,
	}
	if sum.Err != nil {
		rec.Status = recorder.CycleFailed
		rec.Error = sum.Err.Error()
		var re *RebalanceError
		if errors.As(sum.Err, &re) {
			rec.Stage = re.Stage
		}
	}
	if err := s.Recorder.RecordCycle(rec); err != nil {
		log.Warn().Err(err).Msg("failed to journal cycle")
	}
}

func (s *Scheduler) journalOrder(log zerolog.Logger, rec *recorder.OrderRecord) {
	if err := s.Recorder.RecordOrder(rec); err != nil {
		log.Warn().Err(err).Msg("failed to journal order")
	}
}
