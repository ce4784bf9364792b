// Package listing builds and executes the public feed query: active ads,
// optionally constrained by category and price bounds, sorted, capped at
// one page, then refined client-side by a text filter.
package listing

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/adboardapp/adboard/internal/logging"
	"github.com/adboardapp/adboard/internal/models"
	"github.com/adboardapp/adboard/internal/repositories/ads"
)

// PageSize caps every feed query.
const PageSize = 20

// FilterSpec is the set of active search constraints. Price bounds arrive
// as the raw user input; non-numeric input counts as absent. A FilterSpec is
// transient, rebuilt on every filter change and never persisted.
type FilterSpec struct {
	Category   string
	MinPrice   string
	MaxPrice   string
	SortBy     ads.SortOrder
	SearchText string
}

// Engine executes feed queries against the ad repository.
type Engine struct {
	ads     ads.Repository
	log     logging.Logger
	timeout time.Duration
}

// NewEngine constructs an Engine. timeout bounds each remote attempt.
func NewEngine(repo ads.Repository, log logging.Logger, timeout time.Duration) *Engine {
	return &Engine{ads: repo, log: log, timeout: timeout}
}

// Search runs the feed query described by spec and returns one page of
// results, newest or cheapest first. Ads without a price sort last under
// "cheapest" and are excluded by any price bound.
//
// The text filter is applied after the page is fetched, so it can only
// narrow the page; matching ads beyond the first page are not found.
//
// A remote failure degrades to an empty result set together with the
// error; Search never panics through.
func (e *Engine) Search(ctx context.Context, spec FilterSpec) ([]models.Ad, error) {
	q := ads.Query{
		OnlyActive: true,
		Category:   strings.TrimSpace(spec.Category),
		MinPrice:   parsePrice(spec.MinPrice),
		MaxPrice:   parsePrice(spec.MaxPrice),
		Sort:       spec.SortBy,
		Limit:      PageSize,
	}

	var page []models.Ad

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		result, err := e.ads.Select(attemptCtx, q)
		if err != nil {
			return retry.RetryableError(err)
		}
		page = result
		return nil
	})
	if err != nil {
		e.log.Error(ctx, "feed query failed", "err", err)
		return []models.Ad{}, err
	}

	return refine(page, spec.SearchText), nil
}

// refine applies the case-insensitive text filter over an already-fetched
// page, matching against title or description.
func refine(page []models.Ad, searchText string) []models.Ad {
	needle := strings.ToLower(strings.TrimSpace(searchText))
	if needle == "" {
		return page
	}

	result := make([]models.Ad, 0, len(page))
	for _, ad := range page {
		if strings.Contains(strings.ToLower(ad.Title), needle) ||
			strings.Contains(strings.ToLower(ad.Description), needle) {
			result = append(result, ad)
		}
	}
	return result
}

// parsePrice coerces a raw price bound. Empty or non-numeric input means
// no bound.
func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
