// Package match decides which stored articles satisfy a search query
// by fractional tag overlap.
package match

import (
	"context"
	"fmt"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// DefaultOverlapThreshold is the fraction of query tags an article must
// cover to be considered relevant.
const DefaultOverlapThreshold = 0.75

// Service is the relevance matcher.
type Service struct {
	store   Store
	overlap float64
}

// New creates a matcher. overlap <= 0 falls back to the default.
func New(store Store, overlap float64) *Service {
	if overlap <= 0 {
		overlap = DefaultOverlapThreshold
	}
	return &Service{store: store, overlap: overlap}
}

// Match returns the total number of relevant articles and one page of
// them, newest first.
//
// An article is relevant when its tag set covers at least the overlap
// fraction of the query tag set. The threshold is anchored on the query
// side only: an article with many extra tags still matches as long as
// it covers most of the query. The store runs the cheap any-overlap
// query; the threshold is applied here, after the candidates come back,
// and pagination after that — so the returned total counts every match,
// not just the page.
func (s *Service) Match(
	ctx context.Context, queryTags []string, page, limit int, period domain.Period,
) (int, []domain.Article, error) {
	q := domain.NormalizeTags(queryTags)
	if len(q) == 0 {
		return 0, nil, nil
	}

	candidates, err := s.store.FindByTags(ctx, q, period)
	if err != nil {
		return 0, nil, fmt.Errorf("find candidates: %w", err)
	}

	required := s.overlap * float64(len(q))
	matched := candidates[:0]
	for _, a := range candidates {
		if float64(domain.TagOverlap(q, a.Tags)) >= required {
			matched = append(matched, a)
		}
	}

	return len(matched), paginate(matched, page, limit), nil
}

// paginate skips (page-1)*limit matches and takes limit.
func paginate(articles []domain.Article, page, limit int) []domain.Article {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(articles) {
		return nil
	}
	end := start + limit
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end]
}
