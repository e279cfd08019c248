package article

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// articleDoc is the bson shape of a stored article.
type articleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Link        string             `bson:"link"`
	Title       string             `bson:"title"`
	Author      string             `bson:"author,omitempty"`
	Image       string             `bson:"image,omitempty"`
	Date        time.Time          `bson:"date,omitempty"`
	Description string             `bson:"description"`
	Tags        []string           `bson:"tags"`
	Content     []blockDoc         `bson:"content"`
}

type blockDoc struct {
	Kind  string `bson:"kind"`
	Value string `bson:"value"`
}

func docToDomain(d articleDoc) domain.Article {
	a := domain.Article{
		Link:        d.Link,
		Title:       d.Title,
		Author:      d.Author,
		Image:       d.Image,
		Date:        d.Date,
		Description: d.Description,
		Tags:        domain.NormalizeTags(d.Tags),
	}
	if !d.ID.IsZero() {
		a.ID = d.ID.Hex()
	}
	if len(d.Content) > 0 {
		a.Content = make([]domain.ContentBlock, len(d.Content))
		for i, b := range d.Content {
			a.Content[i] = domain.ContentBlock{Kind: domain.BlockKind(b.Kind), Value: b.Value}
		}
	}
	return a
}

func domainToDoc(a domain.Article) articleDoc {
	d := articleDoc{
		Link:        a.Link,
		Title:       a.Title,
		Author:      a.Author,
		Image:       a.Image,
		Date:        a.Date,
		Description: a.Description,
		Tags:        domain.NormalizeTags(a.Tags),
		Content:     blocksToDocs(a.Content),
	}
	if a.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(a.ID); err == nil {
			d.ID = oid
		}
	}
	return d
}

func blocksToDocs(blocks []domain.ContentBlock) []blockDoc {
	// Persist an empty array rather than a missing field so the
	// "content is empty until hydrated" state is explicit in the store.
	out := make([]blockDoc, len(blocks))
	for i, b := range blocks {
		out[i] = blockDoc{Kind: string(b.Kind), Value: b.Value}
	}
	return out
}
