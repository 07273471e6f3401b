package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// StatusReporter publishes fund details on a cron schedule, independent of
// the rebalance loop.
type StatusReporter struct {
	Cron  *cron.Cron
	sched *Scheduler
	ctx   context.Context
}

// NewStatusReporter registers the report on spec, a six-field cron
// expression with seconds.
func NewStatusReporter(ctx context.Context, s *Scheduler, spec string) (*StatusReporter, error) {
	r := &StatusReporter{
		Cron:  cron.New(cron.WithSeconds()),
		sched: s,
		ctx:   ctx,
	}
	if _, err := r.Cron.AddFunc(spec, r.report); err != nil {
		return nil, fmt.Errorf("register status report: %w", err)
	}
	return r, nil
}

func (r *StatusReporter) report() {
	r.sched.publish(r.ctx, false)
}

// Start starts the cron scheduler.
func (r *StatusReporter) Start() {
	r.Cron.Start()
	r.sched.Log.Info().Msg("status reporter started")
}

// Stop stops the cron scheduler and waits for a running report.
func (r *StatusReporter) Stop() {
	<-r.Cron.Stop().Done()
	r.sched.Log.Info().Msg("status reporter stopped")
}
