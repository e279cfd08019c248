package article

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

const (
	maxAttempts = 3
	baseBackoff = 100 * time.Millisecond
)

// withRetry runs fn with bounded exponential backoff on transient store
// errors. Exhausted retries surface as ErrStoreUnavailable; every other
// error returns unchanged on the first attempt.
func withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, ctx.Err())
			case <-time.After(backoff):
			}
		}
		err = fn(ctx)
		if err == nil || !isTransient(err) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// isTransient reports whether a store error is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
