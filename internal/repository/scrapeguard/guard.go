// Package scrapeguard rate-limits upstream scraping per search query.
package scrapeguard

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// store is the consumer interface for the guard (ISP).
type store interface {
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Guard grants at most one scrape per normalized query within the
// cooldown window. A thin query that stays thin after a scrape will not
// re-trigger the upstream site on every request.
type Guard struct {
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a scrape guard.
func New(s store, ttl time.Duration, logger *zap.Logger) *Guard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Guard{store: s, ttl: ttl, logger: logger}
}

// Acquire reports whether a scrape for the query may proceed, and
// starts the cooldown window when it does. The guard fails open: if the
// store is unreachable, scraping is allowed rather than blocking search
// freshness on a cache outage.
func (g *Guard) Acquire(ctx context.Context, query string) bool {
	key := "news:scrape:" + strings.Join(domain.TokenizeQuery(query), "-")

	ok, err := g.store.SetNX(ctx, key, g.ttl)
	if err != nil {
		g.logger.Warn("scrape guard unavailable, allowing scrape",
			zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}
