package match

import (
	"context"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// Store defines the storage contract for the relevance matcher.
type Store interface {
	// FindByTags returns all articles sharing at least one tag with the
	// query, newest first, restricted to the period window.
	FindByTags(ctx context.Context, tags []string, period domain.Period) ([]domain.Article, error)
}
