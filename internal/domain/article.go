package domain

import "time"

// BlockKind identifies the type of a content block.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockTitle     BlockKind = "title"
	BlockImage     BlockKind = "image"
)

// ContentBlock is one typed piece of an article body. Order of blocks
// reconstructs the body.
type ContentBlock struct {
	Kind  BlockKind
	Value string
}

// Article is the stored representation of a scraped review article.
// Link is the natural key: at most one Article exists per link.
type Article struct {
	ID          string
	Link        string
	Title       string
	Author      string
	Image       string
	Date        time.Time
	Description string
	Tags        []string
	Content     []ContentBlock
}

// HasContent reports whether the article body has been hydrated.
// Content is either entirely empty or entirely populated.
func (a Article) HasContent() bool {
	return len(a.Content) > 0
}

// RawArticle is a freshly scraped search result before it is merged
// into the store. Content is always empty at this stage.
type RawArticle struct {
	Link        string
	Title       string
	Author      string
	Image       string
	Date        time.Time
	Description string
	Tags        []string
}
