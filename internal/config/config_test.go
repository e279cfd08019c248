package config

import (
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Mongo: MongoConfig{URI: "mongodb://localhost:27017"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Search.DefaultPageSize != 5 {
		t.Errorf("default page size = %d, want 5", cfg.Search.DefaultPageSize)
	}
	if cfg.Search.MaxPageSize != 10 {
		t.Errorf("max page size = %d, want 10", cfg.Search.MaxPageSize)
	}
	if cfg.Search.OverlapThreshold != 0.75 {
		t.Errorf("overlap threshold = %v, want 0.75", cfg.Search.OverlapThreshold)
	}
	if cfg.Search.RescrapeThreshold != cfg.Search.DefaultPageSize {
		t.Errorf(
			"rescrape threshold = %d, want default page size %d",
			cfg.Search.RescrapeThreshold, cfg.Search.DefaultPageSize,
		)
	}
	if cfg.Mongo.Collection != "search_results" {
		t.Errorf("collection = %q, want search_results", cfg.Mongo.Collection)
	}
	if cfg.Scraper.BaseURL == "" {
		t.Error("expected default scraper base URL")
	}
}

func TestApplyDefaults_KeepsExplicitRescrapeThreshold(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Mongo:  MongoConfig{URI: "mongodb://localhost:27017"},
		Search: SearchConfig{RescrapeThreshold: 20},
	}
	cfg.ApplyDefaults()

	if cfg.Search.RescrapeThreshold != 20 {
		t.Errorf("rescrape threshold = %d, want 20", cfg.Search.RescrapeThreshold)
	}
}

func TestValidate_MissingMongoURI(t *testing.T) {
	cfg := validConfig()
	cfg.Mongo.URI = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing mongo.uri")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_OverlapThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.Search.OverlapThreshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap threshold above 1")
	}
}

func TestValidate_RefreshWithoutQueries(t *testing.T) {
	cfg := validConfig()
	cfg.Refresh.Enabled = true
	cfg.Refresh.Queries = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled refresh without queries")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("NEWS_TEST_URI", "mongodb://db:27017")

	in := []byte("uri: ${NEWS_TEST_URI}\nport: ${NEWS_TEST_PORT:-8080}\n")
	got := string(expandEnvVars(in))
	want := "uri: mongodb://db:27017\nport: 8080\n"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}
