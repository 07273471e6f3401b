package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SenateLong/internal/model"
)

// indexResponse is the JSON shape of the report index endpoint.
type indexResponse struct {
	Data [][]string `json:"data"`
}

// FetchIndexPage queries one page of periodic transaction reports submitted
// within the last lookbackDays. An empty result with a nil error means there
// are no more pages; a failed request returns a *FetchError.
func (c *EFDClient) FetchIndexPage(ctx context.Context, offset int, token string, lookbackDays int) ([]model.FilingIndexEntry, error) {
	entries, _, err := c.fetchIndexPage(ctx, offset, token, lookbackDays)
	return entries, err
}

// fetchIndexPage also returns the raw row count so pagination does not stop
// early on a page whose rows were all unparsable.
func (c *EFDClient) fetchIndexPage(ctx context.Context, offset int, token string, lookbackDays int) ([]model.FilingIndexEntry, int, error) {
	cutoff := c.now().UTC().AddDate(0, 0, -lookbackDays).Format(portalDate)
	form := url.Values{}
	form.Set("start", strconv.Itoa(offset))
	form.Set("length", strconv.Itoa(c.pageLength))
	form.Set("report_types", periodicReports)
	form.Set("submitted_start_date", cutoff+" 00:00:00")
	form.Set(csrfField, token)

	target := c.resolve(ReportsPath)
	pg, err := c.doWithRetry(ctx, http.MethodPost, target, form, map[string]string{
		"Referer":     c.resolve(SearchPath),
		"X-CSRFToken": token,
	})
	if err != nil {
		c.Log.Error().Err(err).Int("offset", offset).Msg("failed to fetch report index")
		return nil, 0, err
	}

	var resp indexResponse
	if err := json.Unmarshal(pg.body, &resp); err != nil {
		return nil, 0, &FetchError{URL: target, Err: fmt.Errorf("decode index: %w", err)}
	}

	entries := make([]model.FilingIndexEntry, 0, len(resp.Data))
	for _, row := range resp.Data {
		entry, err := parseIndexRow(row)
		if err != nil {
			c.Log.Warn().Err(err).Int("offset", offset).Msg("skipping index row")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, len(resp.Data), nil
}

// EnumerateAllFilings pages through the index until a page comes back empty.
// On a failed page it returns the entries collected so far with the error.
func (c *EFDClient) EnumerateAllFilings(ctx context.Context, lookbackDays int) ([]model.FilingIndexEntry, error) {
	if c.token == "" {
		if _, err := c.EstablishSession(ctx); err != nil {
			return nil, err
		}
	}

	var all []model.FilingIndexEntry
	offset := 0
	for pageNo := 0; ; pageNo++ {
		if c.maxPages > 0 && pageNo >= c.maxPages {
			c.Log.Warn().Int("pages", pageNo).Msg("page cap reached, stopping index enumeration")
			break
		}
		entries, raw, err := c.fetchIndexPage(ctx, offset, c.token, lookbackDays)
		if err != nil {
			return all, fmt.Errorf("index page at offset %d: %w", offset, err)
		}
		if raw == 0 {
			break
		}
		all = append(all, entries...)
		offset += c.pageLength
	}
	c.Log.Info().Int("filings", len(all)).Msg("report index enumerated")
	return all, nil
}

// parseIndexRow decodes [first, last, office, link html, filed date].
func parseIndexRow(row []string) (model.FilingIndexEntry, error) {
	if len(row) < 5 {
		return model.FilingIndexEntry{}, &ParseError{Field: "index row", Value: strings.Join(row, "|"),
			Err: fmt.Errorf("want 5 cells, got %d", len(row))}
	}
	link, err := parseLink(row[3])
	if err != nil {
		return model.FilingIndexEntry{}, err
	}
	filed, err := time.Parse(portalDate, strings.TrimSpace(row[4]))
	if err != nil {
		return model.FilingIndexEntry{}, &ParseError{Field: "filing date", Value: row[4], Err: err}
	}
	return model.FilingIndexEntry{
		FirstName: strings.TrimSpace(row[0]),
		LastName:  strings.TrimSpace(row[1]),
		Link:      link,
		FiledAt:   filed,
	}, nil
}

func parseLink(cell string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return "", &ParseError{Field: "report link", Value: cell, Err: err}
	}
	href, ok := doc.Find("a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", &ParseError{Field: "report link", Value: cell}
	}
	return strings.TrimSpace(href), nil
}
