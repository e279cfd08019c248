// Command newsfill seeds the article store by scraping a search per
// laptop model from a JSON catalog of the form:
//
//	[{"producer": "Lenovo", "model": "Legion 5 Pro"}, ...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/config"
	dbMongo "github.com/LLkaia/news-laptops-ms/internal/db/mongo"
	logpkg "github.com/LLkaia/news-laptops-ms/internal/logger"
	articlerepo "github.com/LLkaia/news-laptops-ms/internal/repository/article"
	"github.com/LLkaia/news-laptops-ms/internal/scraper"
	ingestuc "github.com/LLkaia/news-laptops-ms/internal/usecase/ingest"
)

type laptopModel struct {
	Producer string `json:"producer"`
	Model    string `json:"model"`
}

func main() {
	modelsPath := flag.String("models", "laptop_models.json", "path to the laptop models catalog")
	pause := flag.Duration("pause", time.Second, "pause between scrapes")
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	laptops, err := loadModels(*modelsPath)
	if err != nil {
		logger.Fatal("Failed to load laptop models", zap.Error(err))
	}
	logger.Info("Loaded laptop models", zap.Int("count", len(laptops)))

	ctx := context.Background()

	store, err := dbMongo.NewStore(ctx, dbMongo.Config{
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	scrape := scraper.New(scraper.Config{
		BaseURL:   cfg.Scraper.BaseURL,
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   time.Duration(cfg.Scraper.TimeoutSec) * time.Second,
	})
	ingest := ingestuc.New(articlerepo.New(store.Articles()), logger)

	failed := 0
	for i, laptop := range laptops {
		query := strings.ToLower(strings.TrimSpace(laptop.Producer + " " + laptop.Model))
		if query == "" {
			continue
		}

		raw, err := scrape.SearchByQuery(ctx, query)
		if err != nil {
			logger.Error("Scrape failed", zap.String("query", query), zap.Error(err))
			failed++
			continue
		}

		merged, err := ingest.Merge(ctx, raw)
		if err != nil {
			logger.Error("Merge failed", zap.String("query", query), zap.Error(err))
			failed++
			continue
		}

		logger.Info("Processed laptop",
			zap.Int("index", i),
			zap.String("query", query),
			zap.Int("scraped", len(raw)),
			zap.Int("merged", len(merged)),
		)

		// Be polite to the upstream site.
		time.Sleep(*pause)
	}

	logger.Info("Seeding finished", zap.Int("total", len(laptops)), zap.Int("failed", failed))
	if failed > 0 {
		os.Exit(1)
	}
}

func loadModels(path string) ([]laptopModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var laptops []laptopModel
	if err := json.Unmarshal(data, &laptops); err != nil {
		return nil, err
	}
	return laptops, nil
}
