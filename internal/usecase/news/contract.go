package news

import (
	"context"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// Store defines the storage contract for the orchestrator.
type Store interface {
	// FindByID returns ErrArticleNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (domain.Article, error)
	UpdateContent(ctx context.Context, id string, content []domain.ContentBlock) error
	// FindNewest returns the total article count and one page ordered by
	// descending date.
	FindNewest(ctx context.Context, skip, limit int) (int, []domain.Article, error)
}

// Matcher ranks stored articles against query tags.
type Matcher interface {
	Match(ctx context.Context, queryTags []string, page, limit int, period domain.Period) (
		total int, articles []domain.Article, err error,
	)
}

// Ingester merges scraped articles into the store.
type Ingester interface {
	Merge(ctx context.Context, raw []domain.RawArticle) ([]domain.Article, error)
}

// Scraper is the upstream scrape provider.
type Scraper interface {
	SearchByQuery(ctx context.Context, query string) ([]domain.RawArticle, error)
	FetchContent(ctx context.Context, link string) ([]domain.ContentBlock, error)
}

// Guard rate-limits scrapes per query. Acquire reports whether a scrape
// may proceed and starts the cooldown when it does.
type Guard interface {
	Acquire(ctx context.Context, query string) bool
}
