package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"SenateLong/internal/broker"
	"SenateLong/internal/fund"
	"SenateLong/internal/model"
	"SenateLong/internal/notifier"
	"SenateLong/internal/recorder"
)

// TransactionSource yields recent disclosed transactions, newest first.
type TransactionSource interface {
	Scrape(ctx context.Context, lookbackDays int, wanted model.TransactionType) ([]model.TransactionRecord, error)
}

// Scheduler drives the rebalance loop: wait for the due time, liquidate,
// rebuild from fresh disclosures and schedule the next cycle.
type Scheduler struct {
	Broker   broker.Broker
	Source   TransactionSource
	Tracker  *fund.Tracker
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Log      zerolog.Logger

	cfg   Settings
	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
	now   func() time.Time
}

// NewScheduler creates a new Scheduler. A nil recorder disables the journal.
func NewScheduler(b broker.Broker, src TransactionSource, tr *fund.Tracker, n notifier.Notifier, rec recorder.Recorder, cfg Settings, log zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Broker:   b,
		Source:   src,
		Tracker:  tr,
		Notifier: n,
		Recorder: rec,
		Log:      log.With().Str("component", "scheduler").Logger(),
		cfg:      cfg.withDefaults(),
		sleep:    sleep,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Run loops until ctx is cancelled. The first iteration rebalances
// immediately. A rebalance in progress when ctx is cancelled runs to
// completion; the loop exits at the next wait.
func (s *Scheduler) Run(ctx context.Context) {
	s.Log.Info().Str("broker", s.Broker.Name()).
		Int("position_length_days", s.cfg.PositionLengthDays).
		Int("rebalance_frequency_days", s.cfg.RebalanceFrequencyDays).
		Msg("starting senate long strategy")

	clock, ok := s.initialClock(ctx)
	if !ok {
		s.Log.Info().Msg("exiting strategy")
		return
	}
	s.Tracker.SetClock(*clock)
	s.Tracker.SetNextRebalance(clock.Timestamp)
	s.Tracker.SetPhase(model.PhaseAwaitingRebalance)
	s.PublishFundDetails(ctx)

	for {
		if ctx.Err() != nil {
			s.Log.Info().Msg("exiting strategy")
			return
		}

		clock, err := s.Broker.GetClock(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.Log.Warn().Err(err).Dur("retry_in", s.cfg.MinWait).Msg("market clock unavailable")
				_ = s.sleep(ctx, s.cfg.MinWait)
			}
			continue
		}
		s.Tracker.SetClock(*clock)

		next := s.Tracker.Snapshot().NextRebalance
		if !clock.Timestamp.Before(next) {
			s.Rebalance(context.WithoutCancel(ctx))
			s.PublishFundDetails(ctx)
			s.Tracker.SetPhase(model.PhaseAwaitingRebalance)
			continue
		}

		wait := clock.NextOpen.Sub(clock.Timestamp)
		if wait < s.cfg.MinWait {
			wait = s.cfg.MinWait
		}
		s.Tracker.SetPhase(model.PhaseIdle)
		s.Log.Info().Time("next_rebalance", next).Time("wake_at", clock.Timestamp.Add(wait)).
			Msg("waiting for next market open")
		if err := s.sleep(ctx, wait); err == nil {
			s.Tracker.SetPhase(model.PhaseAwaitingRebalance)
		}
	}
}

func (s *Scheduler) initialClock(ctx context.Context) (*model.Clock, bool) {
	for {
		clock, err := s.Broker.GetClock(ctx)
		if err == nil {
			return clock, true
		}
		if ctx.Err() != nil {
			return nil, false
		}
		s.Log.Warn().Err(err).Dur("retry_in", s.cfg.MinWait).Msg("market clock unavailable")
		if s.sleep(ctx, s.cfg.MinWait) != nil {
			return nil, false
		}
	}
}

// PublishFundDetails refreshes the account and sends the fund details block.
func (s *Scheduler) PublishFundDetails(ctx context.Context) {
	s.publish(ctx, true)
}

// publish reads the account and positions. With store unset the tracker is
// left untouched, so callers outside the loop never write scheduler state.
func (s *Scheduler) publish(ctx context.Context, store bool) {
	state := s.Tracker.Snapshot()
	acct, err := s.Broker.GetAccount(ctx)
	if err != nil {
		s.Log.Warn().Err(err).Msg("account unavailable for fund details")
	} else {
		state.Account = *acct
		if store {
			s.Tracker.SetAccount(*acct)
		}
	}
	positions, err := s.Broker.GetPositions(ctx)
	if err != nil {
		s.Log.Warn().Err(err).Msg("positions unavailable for fund details")
	}
	s.notify(ctx, notifier.FormatFundDetails(state, len(positions), s.now()))
}

func (s *Scheduler) notify(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, text); err != nil {
		s.Log.Warn().Err(err).Msg("notification failed")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
