package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

type mockNews struct {
	total    int
	articles []domain.Article
	article  domain.Article
	err      error

	gotQuery  string
	gotPage   int
	gotLimit  int
	gotPeriod domain.Period
	gotID     string
}

func (m *mockNews) Search(
	_ context.Context, query string, page, limit int, period domain.Period,
) (int, []domain.Article, error) {
	m.gotQuery, m.gotPage, m.gotLimit, m.gotPeriod = query, page, limit, period
	if m.err != nil {
		return 0, nil, m.err
	}
	return m.total, m.articles, nil
}

func (m *mockNews) Get(_ context.Context, id string) (domain.Article, error) {
	m.gotID = id
	if m.err != nil {
		return domain.Article{}, m.err
	}
	return m.article, nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestServer(news *mockNews, pingers map[string]Pinger) *httptest.Server {
	r := chi.NewRouter()
	NewServer(news, pingers, zap.NewNop()).Routes(r)
	return httptest.NewServer(r)
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestSearchNews(t *testing.T) {
	date := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	news := &mockNews{
		total: 7,
		articles: []domain.Article{
			{
				ID:          "66f0a1",
				Link:        "https://example.com/best-gaming",
				Title:       "Best gaming laptops",
				Author:      "Jo Writer",
				Date:        date,
				Description: "Our picks.",
				Tags:        []string{"gaming", "laptop"},
				Content:     []domain.ContentBlock{{Kind: domain.BlockParagraph, Value: "hidden"}},
			},
		},
	}
	srv := newTestServer(news, nil)
	defer srv.Close()

	var body searchResponse
	status := getJSON(t, srv.URL+"/news?find=gaming+laptop&page=2&limit=5&period=last-week", &body)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if news.gotQuery != "gaming laptop" || news.gotPage != 2 || news.gotLimit != 5 {
		t.Errorf("service got (%q, %d, %d)", news.gotQuery, news.gotPage, news.gotLimit)
	}
	if news.gotPeriod != domain.PeriodLastWeek {
		t.Errorf("period = %q, want last-week", news.gotPeriod)
	}
	if body.Count != 7 || len(body.Results) != 1 {
		t.Fatalf("count = %d, results = %d", body.Count, len(body.Results))
	}
	got := body.Results[0]
	if got.Title != "Best gaming laptops" || got.ID != "66f0a1" {
		t.Errorf("unexpected article: %+v", got)
	}
	if got.Content != nil {
		t.Error("list responses must omit content")
	}
}

func TestSearchNews_DefaultsAndEmptyQuery(t *testing.T) {
	news := &mockNews{total: 0, articles: nil}
	srv := newTestServer(news, nil)
	defer srv.Close()

	var body searchResponse
	status := getJSON(t, srv.URL+"/news", &body)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if news.gotPage != 1 || news.gotLimit != 0 || news.gotPeriod != domain.PeriodAll {
		t.Errorf("defaults: page = %d, limit = %d, period = %q", news.gotPage, news.gotLimit, news.gotPeriod)
	}
	if body.Results == nil {
		t.Error("results must serialize as an empty array, not null")
	}
}

func TestSearchNews_BadParams(t *testing.T) {
	srv := newTestServer(&mockNews{}, nil)
	defer srv.Close()

	cases := []struct {
		name string
		url  string
		code string
	}{
		{"bad period", "/news?period=yesterday", "invalid_period"},
		{"bad page", "/news?page=zero", "invalid_page"},
		{"negative page", "/news?page=-1", "invalid_page"},
		{"bad limit", "/news?limit=ten", "invalid_limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body errorResponse
			status := getJSON(t, srv.URL+tc.url, &body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if body.Code != tc.code {
				t.Errorf("code = %q, want %q", body.Code, tc.code)
			}
		})
	}
}

func TestGetArticle_IncludesContent(t *testing.T) {
	news := &mockNews{article: domain.Article{
		ID:    "66f0a1",
		Link:  "https://example.com/a",
		Title: "A",
		Tags:  []string{"laptop"},
		Content: []domain.ContentBlock{
			{Kind: domain.BlockTitle, Value: "Intro"},
			{Kind: domain.BlockParagraph, Value: "Body text."},
		},
	}}
	srv := newTestServer(news, nil)
	defer srv.Close()

	var body articleResponse
	status := getJSON(t, srv.URL+"/news/66f0a1", &body)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if news.gotID != "66f0a1" {
		t.Errorf("service got id %q", news.gotID)
	}
	if len(body.Content) != 2 || body.Content[0].Kind != "title" || body.Content[1].Value != "Body text." {
		t.Errorf("content = %+v", body.Content)
	}
}

func TestDomainErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.ErrArticleNotFound, http.StatusNotFound, "article_not_found"},
		{"upstream", domain.ErrUpstreamFetch, http.StatusBadGateway, "upstream_fetch_failed"},
		{"store down", domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&mockNews{err: tc.err}, nil)
			defer srv.Close()

			var body errorResponse
			status := getJSON(t, srv.URL+"/news/any", &body)
			if status != tc.status {
				t.Errorf("status = %d, want %d", status, tc.status)
			}
			if body.Code != tc.code {
				t.Errorf("code = %q, want %q", body.Code, tc.code)
			}
			if tc.name == "unknown" && body.Message != "internal error" {
				t.Errorf("message = %q, must not leak internals", body.Message)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		srv := newTestServer(&mockNews{}, map[string]Pinger{"mongo": &mockPinger{}})
		defer srv.Close()

		var body map[string]any
		if status := getJSON(t, srv.URL+"/healthz", &body); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if body["status"] != "ok" {
			t.Errorf("status field = %v", body["status"])
		}
	})

	t.Run("dependency down", func(t *testing.T) {
		srv := newTestServer(&mockNews{}, map[string]Pinger{
			"mongo": &mockPinger{err: errors.New("down")},
		})
		defer srv.Close()

		var body map[string]any
		if status := getJSON(t, srv.URL+"/healthz", &body); status != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", status)
		}
		if body["status"] != "degraded" {
			t.Errorf("status field = %v", body["status"])
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockNews{}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
