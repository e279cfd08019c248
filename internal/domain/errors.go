package domain

import "errors"

var (
	// ErrArticleNotFound signals that an identifier does not resolve to a
	// stored article. Malformed identifiers map here as well, so the
	// storage key format never leaks to callers.
	ErrArticleNotFound = errors.New("article not found")
	// ErrDuplicateLink signals an insert that collided with an existing
	// article for the same link.
	ErrDuplicateLink = errors.New("duplicate article link")
	// ErrUpstreamFetch signals a scrape provider failure (network, parse).
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrStoreUnavailable signals a persistent store failure after retries.
	ErrStoreUnavailable = errors.New("article store unavailable")
)
