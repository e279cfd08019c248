// Package article implements the article store contracts on MongoDB.
package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// Repo implements the store contracts of the ingest, match, and news
// usecases on a MongoDB collection.
type Repo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// New creates an article repository.
func New(coll *mongo.Collection) *Repo {
	return &Repo{coll: coll, now: time.Now}
}

// FindByLink returns the article stored under the given link, or
// ErrArticleNotFound.
func (r *Repo) FindByLink(ctx context.Context, link string) (domain.Article, error) {
	var doc articleDoc
	err := withRetry(ctx, "find by link", func(ctx context.Context) error {
		return r.coll.FindOne(ctx, bson.M{"link": link}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Article{}, domain.ErrArticleNotFound
		}
		return domain.Article{}, fmt.Errorf("find by link: %w", err)
	}
	return docToDomain(doc), nil
}

// FindByID returns the article with the given identifier. A malformed
// identifier is indistinguishable from an unknown one: both yield
// ErrArticleNotFound.
func (r *Repo) FindByID(ctx context.Context, id string) (domain.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Article{}, domain.ErrArticleNotFound
	}

	var doc articleDoc
	err = withRetry(ctx, "find by id", func(ctx context.Context) error {
		return r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Article{}, domain.ErrArticleNotFound
		}
		return domain.Article{}, fmt.Errorf("find by id: %w", err)
	}
	return docToDomain(doc), nil
}

// Insert stores a new article and returns it with the assigned
// identifier. A link collision yields ErrDuplicateLink (unique index).
func (r *Repo) Insert(ctx context.Context, a domain.Article) (domain.Article, error) {
	doc := domainToDoc(a)

	err := withRetry(ctx, "insert", func(ctx context.Context) error {
		res, err := r.coll.InsertOne(ctx, doc)
		if err != nil {
			return err
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			doc.ID = oid
		}
		return nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Article{}, fmt.Errorf("insert %s: %w", a.Link, domain.ErrDuplicateLink)
		}
		return domain.Article{}, fmt.Errorf("insert: %w", err)
	}
	return docToDomain(doc), nil
}

// AddTags unions tags into an article's tag set as a single atomic
// store-side update, so concurrent merges for the same link cannot
// drop each other's additions.
func (r *Repo) AddTags(ctx context.Context, id string, tags []string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrArticleNotFound
	}

	tags = domain.NormalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}

	update := bson.M{"$addToSet": bson.M{"tags": bson.M{"$each": tags}}}
	err = withRetry(ctx, "add tags", func(ctx context.Context) error {
		res, err := r.coll.UpdateByID(ctx, oid, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrArticleNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			return err
		}
		return fmt.Errorf("add tags: %w", err)
	}
	return nil
}

// UpdateContent replaces the article's content sequence in one write.
func (r *Repo) UpdateContent(ctx context.Context, id string, content []domain.ContentBlock) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrArticleNotFound
	}

	update := bson.M{"$set": bson.M{"content": blocksToDocs(content)}}
	err = withRetry(ctx, "update content", func(ctx context.Context) error {
		res, err := r.coll.UpdateByID(ctx, oid, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrArticleNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			return err
		}
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// FindByTags returns all articles sharing at least one tag with the
// query, newest first, restricted to the period window. The overlap
// threshold is applied by the relevance matcher, not store-side: the
// store only runs the indexed array-overlap query.
func (r *Repo) FindByTags(ctx context.Context, tags []string, period domain.Period) ([]domain.Article, error) {
	filter := bson.M{"tags": bson.M{"$in": domain.NormalizeTags(tags)}}
	if start, end, ok := period.Window(r.now()); ok {
		filter["date"] = bson.M{"$gte": start, "$lt": end}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	var docs []articleDoc
	err := withRetry(ctx, "find by tags", func(ctx context.Context) error {
		cur, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, fmt.Errorf("find by tags: %w", err)
	}

	articles := make([]domain.Article, len(docs))
	for i, d := range docs {
		articles[i] = docToDomain(d)
	}
	return articles, nil
}

// FindNewest returns the total article count and one page of articles
// ordered by descending date.
func (r *Repo) FindNewest(ctx context.Context, skip, limit int) (int, []domain.Article, error) {
	var total int64
	var docs []articleDoc

	err := withRetry(ctx, "find newest", func(ctx context.Context) error {
		n, err := r.coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return err
		}
		total = n

		opts := options.Find().
			SetSort(bson.D{{Key: "date", Value: -1}}).
			SetSkip(int64(skip)).
			SetLimit(int64(limit))
		cur, err := r.coll.Find(ctx, bson.M{}, opts)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return 0, nil, fmt.Errorf("find newest: %w", err)
	}

	articles := make([]domain.Article, len(docs))
	for i, d := range docs {
		articles[i] = docToDomain(d)
	}
	return int(total), articles, nil
}
