package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SenateLong/internal/model"
)

// Fixed column positions of a report's transaction table.
const (
	colTxDate  = 1
	colTicker  = 3
	colType    = 6
	colAmount  = 7
	minColumns = 8
)

// Filter narrows extracted transactions. A zero Since or empty Types
// disables that check.
type Filter struct {
	Since time.Time
	Types []model.TransactionType
}

// Match reports whether r passes the filter.
func (f Filter) Match(r model.TransactionRecord) bool {
	if !f.Since.IsZero() && r.TransactionDate.Before(f.Since) {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if r.Type == t {
			return true
		}
	}
	return false
}

// ExtractTransactions fetches a filing's report page and returns its stock
// transactions. Paper filings and pages without a table yield no records
// and no error. A page redirected to the landing page triggers one session
// re-bootstrap and one retry.
func (c *EFDClient) ExtractTransactions(ctx context.Context, entry model.FilingIndexEntry, filter Filter) ([]model.TransactionRecord, error) {
	if strings.HasPrefix(entry.Link, PaperPrefix) {
		c.Log.Debug().Str("filer", entry.FilerName()).Msg("paper filing, skipping")
		return nil, nil
	}

	target := c.resolve(entry.Link)
	pg, err := c.doWithRetry(ctx, http.MethodGet, target, nil, nil)
	if err != nil {
		return nil, err
	}
	if c.isLanding(pg.url) {
		c.Log.Info().Str("filer", entry.FilerName()).Msg("session expired, re-establishing")
		if _, err := c.EstablishSession(ctx); err != nil {
			return nil, err
		}
		pg, err = c.doWithRetry(ctx, http.MethodGet, target, nil, nil)
		if err != nil {
			return nil, err
		}
		if c.isLanding(pg.url) {
			return nil, &FetchError{URL: target, Err: ErrSessionExpired}
		}
	}

	return c.parseReport(pg.body, entry, filter)
}

func (c *EFDClient) parseReport(body []byte, entry model.FilingIndexEntry, filter Filter) ([]model.TransactionRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Field: "report page", Value: entry.Link, Err: err}
	}
	tbody := doc.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, nil
	}

	var records []model.TransactionRecord
	tbody.Find("tr").Each(func(i int, row *goquery.Selection) {
		rec, ok, err := parseTransactionRow(row, entry)
		if err != nil {
			c.Log.Debug().Err(err).Str("link", entry.Link).Int("row", i).Msg("skipping transaction row")
			return
		}
		if ok && filter.Match(rec) {
			records = append(records, rec)
		}
	})
	return records, nil
}

// parseTransactionRow returns ok=false for rows without a usable ticker.
func parseTransactionRow(row *goquery.Selection, entry model.FilingIndexEntry) (model.TransactionRecord, bool, error) {
	cells := row.Find("td")
	if cells.Length() < minColumns {
		return model.TransactionRecord{}, false, &ParseError{Field: "row", Value: strings.TrimSpace(row.Text()),
			Err: fmt.Errorf("want %d cells, got %d", minColumns, cells.Length())}
	}
	col := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }

	ticker := col(colTicker)
	if isNoTicker(ticker) {
		return model.TransactionRecord{}, false, nil
	}
	txDate, err := time.Parse(portalDate, col(colTxDate))
	if err != nil {
		return model.TransactionRecord{}, false, &ParseError{Field: "transaction date", Value: col(colTxDate), Err: err}
	}
	amount, err := ParseAmount(col(colAmount))
	if err != nil {
		return model.TransactionRecord{}, false, err
	}
	if !entry.FiledAt.IsZero() && txDate.After(entry.FiledAt) {
		return model.TransactionRecord{}, false, &ParseError{Field: "transaction date", Value: col(colTxDate),
			Err: fmt.Errorf("after filing date %s", entry.FiledAt.Format(portalDate))}
	}

	return model.TransactionRecord{
		Filer:           entry.FilerName(),
		TransactionDate: txDate,
		FilingDate:      entry.FiledAt,
		Ticker:          ticker,
		Type:            model.TransactionType(col(colType)),
		Amount:          amount,
	}, true, nil
}

func isNoTicker(t string) bool {
	return t == "" || t == "--"
}

// ParseAmount reads a disclosed range such as "$1,001 - $15,000" and returns
// its last bound.
func ParseAmount(cell string) (int64, error) {
	parts := strings.Split(cell, "$")
	last := strings.TrimSpace(strings.ReplaceAll(parts[len(parts)-1], ",", ""))
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, &ParseError{Field: "amount", Value: cell, Err: err}
	}
	if n <= 0 {
		return 0, &ParseError{Field: "amount", Value: cell, Err: fmt.Errorf("not positive")}
	}
	return n, nil
}
