package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
	"github.com/LLkaia/news-laptops-ms/internal/metrics"
)

type scraper interface {
	SearchByQuery(ctx context.Context, query string) ([]domain.RawArticle, error)
}

type ingester interface {
	Merge(ctx context.Context, raw []domain.RawArticle) ([]domain.Article, error)
}

// Refresher periodically re-scrapes a fixed set of queries so popular
// topics stay warm without waiting for a thin search to trigger a
// scrape.
type Refresher struct {
	Scraper  scraper
	Ingester ingester
	Queries  []string
	Interval time.Duration
	Logger   *zap.Logger
}

func (w *Refresher) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}
	if len(w.Queries) == 0 {
		w.Logger.Warn("refresher started with no queries, idling")
		<-ctx.Done()
		return nil
	}

	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Refresher) runOnce(ctx context.Context) {
	for _, query := range w.Queries {
		if ctx.Err() != nil {
			return
		}
		raw, err := w.Scraper.SearchByQuery(ctx, query)
		if err != nil {
			metrics.ScrapesTotal.WithLabelValues("refresh", "error").Inc()
			w.Logger.Error("refresh scrape failed",
				zap.String("query", query), zap.Error(err))
			continue
		}
		metrics.ScrapesTotal.WithLabelValues("refresh", "ok").Inc()

		merged, err := w.Ingester.Merge(ctx, raw)
		if err != nil {
			w.Logger.Error("refresh merge failed",
				zap.String("query", query), zap.Error(err))
			continue
		}
		w.Logger.Info("refreshed query",
			zap.String("query", query),
			zap.Int("scraped", len(raw)),
			zap.Int("merged", len(merged)),
		)
	}
}
