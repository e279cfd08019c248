// Package news orchestrates article retrieval: cached search with
// scrape-on-miss, and lazy content hydration on single-article fetch.
package news

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
	"github.com/LLkaia/news-laptops-ms/internal/metrics"
)

// Service is the retrieval orchestrator.
type Service struct {
	store    Store
	matcher  Matcher
	ingester Ingester
	scraper  Scraper
	guard    Guard
	logger   *zap.Logger

	defaultPageSize int
	maxPageSize     int
	// rescrapeThreshold triggers a live scrape when the total match
	// count (not the page-worthy count) falls below it, so broad
	// queries with thin coverage get enriched too.
	rescrapeThreshold int
}

// New creates the orchestrator.
func New(store Store, matcher Matcher, ingester Ingester, scraper Scraper, logger *zap.Logger) *Service {
	return &Service{
		store:             store,
		matcher:           matcher,
		ingester:          ingester,
		scraper:           scraper,
		logger:            logger,
		defaultPageSize:   5,
		maxPageSize:       10,
		rescrapeThreshold: 5,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithRescrapeThreshold configures the low-result scrape trigger.
func (s *Service) WithRescrapeThreshold(n int) *Service {
	if n > 0 {
		s.rescrapeThreshold = n
	}
	return s
}

// WithGuard attaches a scrape cooldown guard. Without one every thin
// query triggers a scrape.
func (s *Service) WithGuard(g Guard) *Service {
	s.guard = g
	return s
}

// Search returns the total match count and one page of articles.
//
// An empty query lists the newest stored articles. A non-empty query
// runs the relevance matcher; when the total match count is below the
// rescrape threshold the upstream site is scraped once, the results
// merged, and the matcher re-run against the enriched store. A scrape
// failure aborts the search — articles merged before the failure stay.
func (s *Service) Search(
	ctx context.Context, query string, page, limit int, period domain.Period,
) (int, []domain.Article, error) {
	page, limit = s.clampPage(page, limit)

	queryTags := domain.TokenizeQuery(query)
	if len(queryTags) == 0 {
		total, articles, err := s.store.FindNewest(ctx, (page-1)*limit, limit)
		if err != nil {
			return 0, nil, fmt.Errorf("list newest: %w", err)
		}
		return total, articles, nil
	}

	total, articles, err := s.matcher.Match(ctx, queryTags, page, limit, period)
	if err != nil {
		return 0, nil, fmt.Errorf("match: %w", err)
	}

	if total >= s.rescrapeThreshold {
		return total, articles, nil
	}
	if s.guard != nil && !s.guard.Acquire(ctx, query) {
		s.logger.Debug("scrape cooldown active, serving cached matches",
			zap.String("query", query), zap.Int("total", total))
		return total, articles, nil
	}

	if err := s.scrapeAndMerge(ctx, query); err != nil {
		return 0, nil, err
	}

	total, articles, err = s.matcher.Match(ctx, queryTags, page, limit, period)
	if err != nil {
		return 0, nil, fmt.Errorf("re-match after scrape: %w", err)
	}
	return total, articles, nil
}

func (s *Service) scrapeAndMerge(ctx context.Context, query string) error {
	raw, err := s.scraper.SearchByQuery(ctx, query)
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues("search", "error").Inc()
		return fmt.Errorf("scrape %q: %w", query, err)
	}
	metrics.ScrapesTotal.WithLabelValues("search", "ok").Inc()

	merged, err := s.ingester.Merge(ctx, raw)
	if err != nil {
		return fmt.Errorf("merge scraped articles: %w", err)
	}

	s.logger.Info("scraped on cache miss",
		zap.String("query", query),
		zap.Int("scraped", len(raw)),
		zap.Int("merged", len(merged)),
	)
	return nil
}

// Get returns one article by id, hydrating its content on first access.
//
// Content is immutable once populated: a hydrated article is served
// as-is with no re-fetch. Two concurrent first fetches may both scrape
// and write; the scraper is idempotent per link, so the second write
// overwrites with an equivalent sequence.
func (s *Service) Get(ctx context.Context, id string) (domain.Article, error) {
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}

	if a.HasContent() {
		return a, nil
	}

	content, err := s.scraper.FetchContent(ctx, a.Link)
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues("content", "error").Inc()
		return domain.Article{}, fmt.Errorf("fetch content %s: %w", a.Link, err)
	}
	metrics.ScrapesTotal.WithLabelValues("content", "ok").Inc()

	if err := s.store.UpdateContent(ctx, a.ID, content); err != nil {
		return domain.Article{}, fmt.Errorf("persist content: %w", err)
	}
	metrics.ContentHydrationsTotal.Inc()

	a.Content = content
	return a, nil
}

// clampPage normalizes boundary paging values: page >= 1, limit within
// [1, max], defaulting when unset.
func (s *Service) clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	return page, limit
}
