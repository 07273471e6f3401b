package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"SenateLong/internal/fund"
	"SenateLong/internal/logger"
	"SenateLong/internal/model"
	"SenateLong/internal/notifier"
	"SenateLong/internal/recorder"
)

var t0 = time.Date(2024, 6, 3, 13, 30, 0, 0, time.UTC)

func openClock(at time.Time) model.Clock {
	return model.Clock{Timestamp: at, IsOpen: true, NextOpen: at.Add(24 * time.Hour), NextClose: at.Add(6*time.Hour + 30*time.Minute)}
}

// fakeBroker is a scripted broker.Broker.
type fakeBroker struct {
	clocks     []model.Clock
	clockCalls int
	clockFails map[int]bool

	account    model.Account
	accountErr error

	assets   map[string]model.Asset
	assetErr map[string]error
	rejects  map[string]bool

	closeErrs   []error
	cancelFlags []bool

	orders []model.OrderRequest
	calls  []string
}

func newFakeBroker(clocks ...model.Clock) *fakeBroker {
	return &fakeBroker{
		clocks:  clocks,
		account: model.Account{Cash: 400, Equity: 1000, LastEquity: 990, LongMarketValue: 995, Currency: "USD"},
	}
}

func (b *fakeBroker) Name() string { return "fake" }

func (b *fakeBroker) GetClock(ctx context.Context) (*model.Clock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i := b.clockCalls
	b.clockCalls++
	if b.clockFails[i] {
		return nil, errors.New("clock unavailable")
	}
	if i >= len(b.clocks) {
		i = len(b.clocks) - 1
	}
	c := b.clocks[i]
	return &c, nil
}

func (b *fakeBroker) GetAccount(_ context.Context) (*model.Account, error) {
	b.calls = append(b.calls, "account")
	if b.accountErr != nil {
		return nil, b.accountErr
	}
	a := b.account
	return &a, nil
}

func (b *fakeBroker) GetAsset(_ context.Context, symbol string) (*model.Asset, error) {
	if err := b.assetErr[symbol]; err != nil {
		return nil, err
	}
	if a, ok := b.assets[symbol]; ok {
		return &a, nil
	}
	return &model.Asset{Symbol: symbol, Tradable: true, Fractionable: true}, nil
}

func (b *fakeBroker) GetPositions(_ context.Context) ([]model.Position, error) {
	return []model.Position{{Symbol: "AAA", Qty: 1, MarketValue: 100}}, nil
}

func (b *fakeBroker) SubmitOrder(_ context.Context, req model.OrderRequest) (*model.OrderResult, error) {
	b.calls = append(b.calls, "order")
	if b.rejects[req.Symbol] {
		return nil, fmt.Errorf("insufficient buying power for %s", req.Symbol)
	}
	b.orders = append(b.orders, req)
	return &model.OrderResult{ID: "ord-" + req.Symbol, Symbol: req.Symbol, Notional: req.Notional, Status: "accepted"}, nil
}

func (b *fakeBroker) CloseAllPositions(_ context.Context, cancelOrders bool) error {
	b.calls = append(b.calls, "close")
	b.cancelFlags = append(b.cancelFlags, cancelOrders)
	if len(b.closeErrs) > 0 {
		err := b.closeErrs[0]
		b.closeErrs = b.closeErrs[1:]
		return err
	}
	return nil
}

type stubSource struct {
	records []model.TransactionRecord
	err     error
	calls   int
	days    int
	wanted  model.TransactionType
	onCall  func()
}

func (s *stubSource) Scrape(_ context.Context, days int, wanted model.TransactionType) ([]model.TransactionRecord, error) {
	s.calls++
	s.days, s.wanted = days, wanted
	if s.onCall != nil {
		s.onCall()
	}
	return s.records, s.err
}

type memRecorder struct {
	cycles []recorder.CycleRecord
	orders []recorder.OrderRecord
}

func (m *memRecorder) RecordCycle(rec *recorder.CycleRecord) error {
	m.cycles = append(m.cycles, *rec)
	return nil
}

func (m *memRecorder) RecordOrder(rec *recorder.OrderRecord) error {
	m.orders = append(m.orders, *rec)
	return nil
}

func (m *memRecorder) Close() error { return nil }

func purchase(ticker string, amount int64, daysAgo int) model.TransactionRecord {
	return model.TransactionRecord{Ticker: ticker, Amount: amount, Type: model.TxPurchase, TransactionDate: t0.AddDate(0, 0, -daysAgo)}
}

func newTestScheduler(b *fakeBroker, src *stubSource, cfg Settings) (*Scheduler, *bytes.Buffer, *memRecorder) {
	buf := &bytes.Buffer{}
	rec := &memRecorder{}
	s := NewScheduler(b, src, fund.NewTracker(), notifier.NewWriterNotifier(buf), rec, cfg, logger.Nop())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("cycle-%d", n)
	}
	s.now = func() time.Time { return t0 }
	return s, buf, rec
}

// primed sets the tracker as the loop would right before a due rebalance.
func primed(s *Scheduler, c model.Clock, next time.Time) {
	s.Tracker.SetClock(c)
	s.Tracker.SetNextRebalance(next)
}

func TestRebalance_Success(t *testing.T) {
	b := newFakeBroker()
	src := &stubSource{records: []model.TransactionRecord{purchase("AAA", 300, 5), purchase("BBB", 700, 10)}}
	s, buf, rec := newTestScheduler(b, src, Settings{})
	primed(s, openClock(t0), t0)

	next := s.Rebalance(context.Background())

	if want := t0.AddDate(0, 0, 7); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
	if len(b.calls) < 2 || b.calls[0] != "close" || b.calls[1] != "account" {
		t.Errorf("expected liquidation before account read, calls = %v", b.calls)
	}
	if len(b.cancelFlags) != 1 || !b.cancelFlags[0] {
		t.Errorf("expected one close-all with order cancellation, got %v", b.cancelFlags)
	}
	if src.days != 60 || src.wanted != model.TxPurchase {
		t.Errorf("scrape called with days=%d wanted=%q", src.days, src.wanted)
	}
	if len(b.orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(b.orders))
	}
	for i, want := range []struct {
		sym      string
		notional float64
	}{{"AAA", 300}, {"BBB", 700}} {
		o := b.orders[i]
		if o.Symbol != want.sym || o.Notional != want.notional || o.Side != model.SideBuy || o.TimeInForce != model.TimeInForceDay {
			t.Errorf("order %d = %+v", i, o)
		}
	}

	st := s.Tracker.Snapshot()
	if !st.LastCycleOK || st.LastCycleID != "cycle-1" || !st.NextRebalance.Equal(next) {
		t.Errorf("unexpected tracker state: %+v", st)
	}
	if len(rec.cycles) != 1 || rec.cycles[0].Status != recorder.CycleOK || rec.cycles[0].Submitted != 2 {
		t.Errorf("unexpected journal: %+v", rec.cycles)
	}
	if len(rec.orders) != 2 || rec.orders[0].Status != recorder.OrderSubmitted || rec.orders[0].OrderID != "ord-AAA" {
		t.Errorf("unexpected order journal: %+v", rec.orders)
	}
	if !strings.Contains(buf.String(), "Rebalance cycle-1 complete") {
		t.Errorf("missing cycle summary:\n%s", buf.String())
	}
}

func TestRebalance_SubmitFailureFallsBackToNextOpen(t *testing.T) {
	for _, freq := range []int{1, 7, 30} {
		t.Run(fmt.Sprintf("every %d days", freq), func(t *testing.T) {
			b := newFakeBroker()
			b.rejects = map[string]bool{"AAA": true, "BBB": true}
			src := &stubSource{records: []model.TransactionRecord{purchase("AAA", 300, 5), purchase("BBB", 700, 10)}}
			s, buf, rec := newTestScheduler(b, src, Settings{RebalanceFrequencyDays: freq})
			c := openClock(t0)
			primed(s, c, t0)

			next := s.Rebalance(context.Background())

			if !next.Equal(c.NextOpen) {
				t.Errorf("next = %v, want next open %v", next, c.NextOpen)
			}
			if len(rec.cycles) != 1 || rec.cycles[0].Status != recorder.CycleFailed || rec.cycles[0].Stage != StageSubmit {
				t.Errorf("unexpected journal: %+v", rec.cycles)
			}
			if s.Tracker.Snapshot().LastCycleOK {
				t.Error("expected failed cycle in tracker")
			}
			if !strings.Contains(buf.String(), "FAILED") {
				t.Errorf("missing failure summary:\n%s", buf.String())
			}
		})
	}
}

func TestRebalance_StageFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(b *fakeBroker, src *stubSource)
		stage  string
		scrape int
	}{
		{"liquidate", func(b *fakeBroker, _ *stubSource) { b.closeErrs = []error{errors.New("503")} }, StageLiquidate, 0},
		{"account", func(b *fakeBroker, _ *stubSource) { b.accountErr = errors.New("timeout") }, StageAccount, 0},
		{"plan", func(_ *fakeBroker, src *stubSource) { src.err = errors.New("portal down") }, StagePlan, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBroker()
			src := &stubSource{records: []model.TransactionRecord{purchase("AAA", 300, 5)}}
			tt.setup(b, src)
			s, _, rec := newTestScheduler(b, src, Settings{})
			c := openClock(t0)
			primed(s, c, t0)

			next := s.Rebalance(context.Background())

			if !next.Equal(c.NextOpen) {
				t.Errorf("next = %v, want %v", next, c.NextOpen)
			}
			if len(b.orders) != 0 {
				t.Errorf("expected no orders, got %d", len(b.orders))
			}
			if src.calls != tt.scrape {
				t.Errorf("scrape calls = %d, want %d", src.calls, tt.scrape)
			}
			if len(rec.cycles) != 1 || rec.cycles[0].Stage != tt.stage {
				t.Errorf("unexpected journal: %+v", rec.cycles)
			}
		})
	}
}

func TestRebalance_EmptyPlanHoldsCash(t *testing.T) {
	b := newFakeBroker()
	src := &stubSource{records: []model.TransactionRecord{purchase("OLD", 300, 90)}}
	s, _, rec := newTestScheduler(b, src, Settings{})
	primed(s, openClock(t0), t0)

	next := s.Rebalance(context.Background())

	if want := t0.AddDate(0, 0, 7); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
	if len(b.orders) != 0 {
		t.Errorf("expected no orders, got %d", len(b.orders))
	}
	if len(rec.cycles) != 1 || rec.cycles[0].Status != recorder.CycleOK {
		t.Errorf("unexpected journal: %+v", rec.cycles)
	}
}

func TestRebalance_CapitalBase(t *testing.T) {
	tests := []struct {
		cfg  Settings
		want float64
	}{
		{Settings{}, 1000},
		{Settings{CapitalBase: CapitalCash}, 400},
		{Settings{CapitalBase: CapitalFixed, FundSize: 250}, 250},
	}
	for _, tt := range tests {
		b := newFakeBroker()
		src := &stubSource{records: []model.TransactionRecord{purchase("AAA", 300, 5)}}
		s, _, _ := newTestScheduler(b, src, tt.cfg)
		primed(s, openClock(t0), t0)
		s.Rebalance(context.Background())
		if len(b.orders) != 1 || b.orders[0].Notional != tt.want {
			t.Errorf("%s: orders = %+v, want notional %.2f", s.cfg.CapitalBase, b.orders, tt.want)
		}
	}
}

func TestRebalance_OpenMarketAdjust(t *testing.T) {
	closed := openClock(t0)
	closed.IsOpen = false
	tests := []struct {
		name  string
		freq  int
		clock model.Clock
		want  time.Time
	}{
		{"open", 7, openClock(t0), t0.AddDate(0, 0, 6)},
		{"closed", 7, closed, t0.AddDate(0, 0, 7)},
		{"daily", 1, openClock(t0), t0.AddDate(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestScheduler(newFakeBroker(), &stubSource{}, Settings{RebalanceFrequencyDays: tt.freq, OpenMarketAdjust: true})
			primed(s, tt.clock, t0)
			if next := s.Rebalance(context.Background()); !next.Equal(tt.want) {
				t.Errorf("next = %v, want %v", next, tt.want)
			}
		})
	}
}

func TestRebalance_RebasesStaleSchedule(t *testing.T) {
	s, _, _ := newTestScheduler(newFakeBroker(), &stubSource{}, Settings{})
	primed(s, openClock(t0), t0.AddDate(0, 0, -30))

	if next, want := s.Rebalance(context.Background()), t0.AddDate(0, 0, 7); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestSubmitPlan_SkipsAndRejections(t *testing.T) {
	plan := []model.OrderPlanEntry{
		{Ticker: "AAA", WeightedAmount: 100},
		{Ticker: "NOFR", WeightedAmount: 100},
		{Ticker: "NOTR", WeightedAmount: 100},
		{Ticker: "BAD", WeightedAmount: 100},
		{Ticker: "GONE", WeightedAmount: 100},
	}
	setup := func() *fakeBroker {
		b := newFakeBroker()
		b.assets = map[string]model.Asset{
			"NOFR": {Symbol: "NOFR", Tradable: true},
			"NOTR": {Symbol: "NOTR", Fractionable: true},
		}
		b.rejects = map[string]bool{"BAD": true}
		b.assetErr = map[string]error{"GONE": errors.New("asset not found")}
		return b
	}

	tests := []struct {
		requireTradable bool
		want            SubmitResult
	}{
		{true, SubmitResult{Planned: 5, Submitted: 1, Skipped: 2, Rejected: 2}},
		{false, SubmitResult{Planned: 5, Submitted: 2, Skipped: 1, Rejected: 2}},
	}
	for _, tt := range tests {
		b := setup()
		s, _, rec := newTestScheduler(b, &stubSource{}, Settings{RequireTradable: tt.requireTradable})
		res, err := s.SubmitPlan(context.Background(), "c", plan)
		if err != nil {
			t.Fatalf("require_tradable=%v: unexpected error: %v", tt.requireTradable, err)
		}
		if res != tt.want {
			t.Errorf("require_tradable=%v: result = %+v, want %+v", tt.requireTradable, res, tt.want)
		}
		if len(rec.orders) != len(plan) {
			t.Errorf("expected every entry journaled, got %d", len(rec.orders))
		}
	}
}

func TestSubmitPlan_RoundsNotional(t *testing.T) {
	b := newFakeBroker()
	s, _, _ := newTestScheduler(b, &stubSource{}, Settings{})

	if _, err := s.SubmitPlan(context.Background(), "c", []model.OrderPlanEntry{{Ticker: "AAA", WeightedAmount: 1000.0 / 3}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.orders) != 1 || b.orders[0].Notional != 333.33 {
		t.Errorf("orders = %+v", b.orders)
	}
}

func TestSubmitPlan_AllRejectedFails(t *testing.T) {
	b := newFakeBroker()
	b.rejects = map[string]bool{"AAA": true, "BBB": true}
	s, _, _ := newTestScheduler(b, &stubSource{}, Settings{})

	_, err := s.SubmitPlan(context.Background(), "c", []model.OrderPlanEntry{{Ticker: "AAA", WeightedAmount: 1}, {Ticker: "BBB", WeightedAmount: 1}})
	var re *RebalanceError
	if !errors.As(err, &re) || re.Stage != StageSubmit {
		t.Fatalf("expected submit RebalanceError, got %v", err)
	}
}

func TestSubmitPlan_AllSkippedSucceeds(t *testing.T) {
	b := newFakeBroker()
	b.assets = map[string]model.Asset{"AAA": {Symbol: "AAA", Tradable: true}}
	s, _, _ := newTestScheduler(b, &stubSource{}, Settings{})

	res, err := s.SubmitPlan(context.Background(), "c", []model.OrderPlanEntry{{Ticker: "AAA", WeightedAmount: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 || len(b.orders) != 0 {
		t.Errorf("result = %+v, orders = %d", res, len(b.orders))
	}
}

func TestSubmitPlan_CancelledContextStops(t *testing.T) {
	b := newFakeBroker()
	s, _, rec := newTestScheduler(b, &stubSource{}, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.SubmitPlan(ctx, "c", []model.OrderPlanEntry{{Ticker: "AAA", WeightedAmount: 1}})
	var re *RebalanceError
	if !errors.As(err, &re) || re.Stage != StageSubmit || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled submit RebalanceError, got %v", err)
	}
	if len(b.orders) != 0 || res.Submitted != 0 || len(rec.orders) != 0 {
		t.Errorf("expected nothing submitted, orders=%d result=%+v", len(b.orders), res)
	}
}

func TestRebalance_JournalsSkipAndRejectCounts(t *testing.T) {
	b := newFakeBroker()
	b.assets = map[string]model.Asset{"NOFR": {Symbol: "NOFR", Tradable: true}}
	b.rejects = map[string]bool{"BAD": true}
	src := &stubSource{records: []model.TransactionRecord{
		purchase("AAA", 100, 5), purchase("NOFR", 100, 5), purchase("BBB", 100, 5), purchase("BAD", 100, 5),
	}}
	s, _, rec := newTestScheduler(b, src, Settings{})
	primed(s, openClock(t0), t0)

	s.Rebalance(context.Background())

	if len(rec.cycles) != 1 {
		t.Fatalf("expected 1 journaled cycle, got %d", len(rec.cycles))
	}
	c := rec.cycles[0]
	if c.Planned != 4 || c.Submitted != 2 || c.Skipped != 1 || c.Rejected != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

// stopAfter returns a sleep that records durations and cancels after n calls.
func stopAfter(n int, cancel context.CancelFunc, slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		if len(*slept) >= n {
			cancel()
			return context.Canceled
		}
		return nil
	}
}

func TestRun_RebalancesImmediatelyThenWaits(t *testing.T) {
	later := openClock(t0.Add(time.Hour))
	later.NextOpen = t0.Add(24 * time.Hour)
	b := newFakeBroker(openClock(t0), openClock(t0), later)
	src := &stubSource{records: []model.TransactionRecord{purchase("AAA", 300, 5)}}
	s, buf, _ := newTestScheduler(b, src, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var slept []time.Duration
	s.sleep = stopAfter(1, cancel, &slept)

	s.Run(ctx)

	if len(b.cancelFlags) != 1 || len(b.orders) != 1 {
		t.Errorf("expected one rebalance, got closes=%d orders=%d", len(b.cancelFlags), len(b.orders))
	}
	if len(slept) != 1 || slept[0] != 23*time.Hour {
		t.Errorf("slept = %v, want [23h]", slept)
	}
	if next := s.Tracker.Snapshot().NextRebalance; !next.Equal(t0.AddDate(0, 0, 7)) {
		t.Errorf("next rebalance = %v", next)
	}
	if n := strings.Count(buf.String(), "Fund Details"); n != 2 {
		t.Errorf("expected fund details at start and after rebalance, got %d", n)
	}
}

func TestRun_FailedCycleRetriesAtNextOpen(t *testing.T) {
	c0 := openClock(t0)
	c1 := model.Clock{Timestamp: t0.Add(time.Hour), NextOpen: t0.Add(24 * time.Hour)}
	c2 := openClock(t0.Add(24 * time.Hour))
	c3 := openClock(t0.Add(25 * time.Hour))
	c3.NextOpen = t0.Add(48 * time.Hour)
	b := newFakeBroker(c0, c0, c1, c2, c3)
	b.closeErrs = []error{errors.New("503")}
	src := &stubSource{records: []model.TransactionRecord{purchase("AAA", 300, 5)}}
	s, _, rec := newTestScheduler(b, src, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var slept []time.Duration
	s.sleep = stopAfter(2, cancel, &slept)

	s.Run(ctx)

	if len(b.cancelFlags) != 2 {
		t.Fatalf("expected two rebalance attempts, got %d", len(b.cancelFlags))
	}
	if len(rec.cycles) != 2 || rec.cycles[0].Status != recorder.CycleFailed || rec.cycles[1].Status != recorder.CycleOK {
		t.Errorf("unexpected journal: %+v", rec.cycles)
	}
	if !rec.cycles[0].NextDue.Equal(c0.NextOpen) {
		t.Errorf("failed cycle next due = %v, want %v", rec.cycles[0].NextDue, c0.NextOpen)
	}
	if want := c2.Timestamp.AddDate(0, 0, 7); !s.Tracker.Snapshot().NextRebalance.Equal(want) {
		t.Errorf("next rebalance = %v, want %v", s.Tracker.Snapshot().NextRebalance, want)
	}
	if len(slept) != 2 || slept[0] != 23*time.Hour || slept[1] != 23*time.Hour {
		t.Errorf("slept = %v", slept)
	}
}

func TestRun_RetriesClockAfterFailure(t *testing.T) {
	later := openClock(t0.Add(time.Hour))
	later.NextOpen = t0.Add(24 * time.Hour)
	b := newFakeBroker(openClock(t0), openClock(t0), openClock(t0), later)
	b.clockFails = map[int]bool{0: true}
	s, _, _ := newTestScheduler(b, &stubSource{}, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var slept []time.Duration
	s.sleep = stopAfter(2, cancel, &slept)

	s.Run(ctx)

	if len(slept) != 2 || slept[0] != time.Minute || slept[1] != 23*time.Hour {
		t.Errorf("slept = %v, want [1m 23h]", slept)
	}
	if len(b.cancelFlags) != 1 {
		t.Errorf("expected one rebalance, got %d", len(b.cancelFlags))
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	b := newFakeBroker(openClock(t0))
	s, _, _ := newTestScheduler(b, &stubSource{}, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Run(ctx)

	if len(b.cancelFlags) != 0 || len(b.orders) != 0 {
		t.Errorf("expected no trading after cancellation, calls = %v", b.calls)
	}
}

func TestRun_FinishesRebalanceInProgress(t *testing.T) {
	b := newFakeBroker(openClock(t0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &stubSource{records: []model.TransactionRecord{purchase("AAA", 300, 5), purchase("BBB", 700, 5)}, onCall: cancel}
	s, _, rec := newTestScheduler(b, src, Settings{})
	var slept []time.Duration
	s.sleep = stopAfter(1, cancel, &slept)

	s.Run(ctx)

	if len(b.orders) != 2 {
		t.Errorf("expected the in-flight cycle to submit, got %d orders", len(b.orders))
	}
	if len(rec.cycles) != 1 || rec.cycles[0].Status != recorder.CycleOK {
		t.Errorf("unexpected journal: %+v", rec.cycles)
	}
	if len(slept) != 0 {
		t.Errorf("expected exit without waiting, slept %v", slept)
	}
}

func TestStatusReporter(t *testing.T) {
	b := newFakeBroker()
	s, buf, _ := newTestScheduler(b, &stubSource{}, Settings{})

	if _, err := NewStatusReporter(context.Background(), s, "not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	r, err := NewStatusReporter(context.Background(), s, "0 0 17 * * 1-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.report()

	if !strings.Contains(buf.String(), "Fund Equity: $1000.00") || !strings.Contains(buf.String(), "Open Positions: 1") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
	if s.Tracker.Snapshot().Account.Equity != 0 {
		t.Error("status report must not write scheduler state")
	}
}
