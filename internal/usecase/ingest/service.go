// Package ingest merges freshly scraped articles into the store.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
	"github.com/LLkaia/news-laptops-ms/internal/metrics"
)

// Service is the ingestion engine: it resolves duplicates by link and
// unions tag sets.
type Service struct {
	store  Store
	logger *zap.Logger
}

// New creates an ingestion service.
func New(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Merge persists each raw article, returning the stored articles in
// input order. A link already present keeps its record untouched except
// for the tag set, which grows by union; a new link inserts with empty
// content. Merging is not transactional: an error aborts the batch, but
// articles merged before it stay merged and are returned alongside the
// error.
func (s *Service) Merge(ctx context.Context, raw []domain.RawArticle) ([]domain.Article, error) {
	merged := make([]domain.Article, 0, len(raw))
	for _, r := range raw {
		a, err := s.mergeOne(ctx, r)
		if err != nil {
			return merged, fmt.Errorf("merge %s: %w", r.Link, err)
		}
		merged = append(merged, a)
	}
	return merged, nil
}

func (s *Service) mergeOne(ctx context.Context, r domain.RawArticle) (domain.Article, error) {
	existing, err := s.store.FindByLink(ctx, r.Link)
	switch {
	case err == nil:
		return s.mergeTags(ctx, existing, r.Tags)
	case errors.Is(err, domain.ErrArticleNotFound):
		return s.insert(ctx, r)
	default:
		return domain.Article{}, err
	}
}

// mergeTags extends the existing article's tag set. The union runs
// store-side in a single update, so a concurrent merge for the same
// link cannot discard this one's tags.
func (s *Service) mergeTags(ctx context.Context, existing domain.Article, tags []string) (domain.Article, error) {
	union := domain.UnionTags(existing.Tags, tags)
	if len(union) != len(existing.Tags) {
		if err := s.store.AddTags(ctx, existing.ID, tags); err != nil {
			return domain.Article{}, err
		}
	}
	existing.Tags = union
	metrics.ArticlesIngestedTotal.WithLabelValues("merged").Inc()
	return existing, nil
}

func (s *Service) insert(ctx context.Context, r domain.RawArticle) (domain.Article, error) {
	inserted, err := s.store.Insert(ctx, domain.Article{
		Link:        r.Link,
		Title:       r.Title,
		Author:      r.Author,
		Image:       r.Image,
		Date:        r.Date,
		Description: r.Description,
		Tags:        domain.NormalizeTags(r.Tags),
	})
	if err == nil {
		metrics.ArticlesIngestedTotal.WithLabelValues("created").Inc()
		return inserted, nil
	}

	// Lost the insert race against a concurrent merge for the same
	// link: fall back to the merge path against the winner's record.
	if errors.Is(err, domain.ErrDuplicateLink) {
		s.logger.Debug("insert collided, merging tags instead", zap.String("link", r.Link))
		existing, findErr := s.store.FindByLink(ctx, r.Link)
		if findErr != nil {
			return domain.Article{}, findErr
		}
		return s.mergeTags(ctx, existing, r.Tags)
	}

	return domain.Article{}, err
}
