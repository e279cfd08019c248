package ingest

import (
	"context"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// Store defines the storage contract for the ingestion engine.
type Store interface {
	// FindByLink returns ErrArticleNotFound when no article holds the link.
	FindByLink(ctx context.Context, link string) (domain.Article, error)
	// Insert returns ErrDuplicateLink when the link is already stored.
	Insert(ctx context.Context, a domain.Article) (domain.Article, error)
	// AddTags unions tags into the stored tag set atomically.
	AddTags(ctx context.Context, id string, tags []string) error
}
