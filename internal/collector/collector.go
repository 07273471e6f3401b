package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"SenateLong/internal/model"
)

// Collector runs the full scrape: bootstrap, index enumeration, per-filing
// extraction and ordering.
type Collector struct {
	Source      Source
	Log         zerolog.Logger
	AuthRetries int
	Backoff     func(attempt int) time.Duration
	Now         func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(src Source, authRetries int, log zerolog.Logger) *Collector {
	return &Collector{
		Source:      src,
		Log:         log.With().Str("component", "collector").Logger(),
		AuthRetries: authRetries,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
		Now: time.Now,
	}
}

// Scrape returns the transactions dated within the last lookbackDays, of
// type wanted (all types when empty), newest first. Filings that fail to
// extract are skipped.
func (c *Collector) Scrape(ctx context.Context, lookbackDays int, wanted model.TransactionType) ([]model.TransactionRecord, error) {
	c.Log.Info().Str("source", c.Source.Name()).Int("lookback_days", lookbackDays).Msg("searching for senate trades")

	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}
	filings, err := c.Source.EnumerateAllFilings(ctx, lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("enumerate filings: %w", err)
	}

	filter := Filter{Since: LookbackCutoff(c.Now(), lookbackDays)}
	if wanted != "" {
		filter.Types = []model.TransactionType{wanted}
	}

	var all []model.TransactionRecord
	skipped := 0
	for _, f := range filings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		txs, err := c.Source.ExtractTransactions(ctx, f, filter)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			skipped++
			c.Log.Warn().Err(err).Str("filer", f.FilerName()).Str("link", f.Link).Msg("skipping filing")
			continue
		}
		all = append(all, txs...)
	}

	SortNewestFirst(all)
	c.Log.Info().Int("trades", len(all)).Int("filings", len(filings)).Int("skipped", skipped).Msg("scrape finished")
	return all, nil
}

func (c *Collector) bootstrap(ctx context.Context) error {
	var lastErr error
	for i := 0; i <= c.AuthRetries; i++ {
		_, err := c.Source.EstablishSession(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		var ae *AuthError
		if ctx.Err() != nil || !errors.As(err, &ae) || i == c.AuthRetries {
			break
		}
		wait := c.Backoff(i)
		c.Log.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", wait).Msg("session bootstrap failed")
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
	return fmt.Errorf("establish session: %w", lastErr)
}

// LookbackCutoff returns midnight UTC of the day lookbackDays before now.
func LookbackCutoff(now time.Time, lookbackDays int) time.Time {
	d := now.UTC().AddDate(0, 0, -lookbackDays)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// SortNewestFirst orders records by transaction date descending. Ties keep
// their fetch order.
func SortNewestFirst(records []model.TransactionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TransactionDate.After(records[j].TransactionDate)
	})
}
