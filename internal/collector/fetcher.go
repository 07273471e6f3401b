package collector

import (
	"context"

	"SenateLong/internal/model"
)

// Source is the disclosure portal as seen by the Collector.
type Source interface {
	EstablishSession(ctx context.Context) (string, error)
	EnumerateAllFilings(ctx context.Context, lookbackDays int) ([]model.FilingIndexEntry, error)
	ExtractTransactions(ctx context.Context, entry model.FilingIndexEntry, filter Filter) ([]model.TransactionRecord, error)
	Name() string
}
