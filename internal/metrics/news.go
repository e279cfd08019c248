package metrics

import "github.com/prometheus/client_golang/prometheus"

// News-domain metrics. Registered explicitly from main (no init()) so
// tests that exercise usecases don't depend on global registry state.
var (
	// ScrapesTotal counts upstream scrape calls by kind (search, content,
	// refresh) and outcome (ok, error).
	ScrapesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "laptopnews",
			Name:      "scrapes_total",
			Help:      "Upstream scrape calls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// ArticlesIngestedTotal counts merge results: created (new link) or
	// merged (tags unioned into an existing article).
	ArticlesIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "laptopnews",
			Name:      "articles_ingested_total",
			Help:      "Articles processed by the ingestion engine",
		},
		[]string{"result"},
	)

	// ContentHydrationsTotal counts lazy content hydrations.
	ContentHydrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "laptopnews",
			Name:      "content_hydrations_total",
			Help:      "Lazy article content hydrations",
		},
	)
)

// RegisterNewsMetrics registers the news-domain collectors.
func RegisterNewsMetrics() {
	prometheus.MustRegister(ScrapesTotal)
	prometheus.MustRegister(ArticlesIngestedTotal)
	prometheus.MustRegister(ContentHydrationsTotal)
}
