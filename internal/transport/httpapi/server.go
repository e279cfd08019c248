// Package httpapi exposes the news service over a chi HTTP router.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

// NewsService is the use case surface the transport needs.
type NewsService interface {
	Search(ctx context.Context, query string, page, limit int, period domain.Period) (
		total int, articles []domain.Article, err error,
	)
	Get(ctx context.Context, id string) (domain.Article, error)
}

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server handles the HTTP API.
type Server struct {
	news          NewsService
	pingers       map[string]Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. pingers keys the health checks
// by component name.
func NewServer(news NewsService, pingers map[string]Pinger, logger *zap.Logger) *Server {
	s := &Server{
		news:    news,
		pingers: pingers,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrArticleNotFound, http.StatusNotFound, "article_not_found"),
		sentinelHandler(domain.ErrUpstreamFetch, http.StatusBadGateway, "upstream_fetch_failed"),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"),
	}
	return s
}

// Routes mounts the API on a router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/news", s.searchNews)
	r.Get("/news/{id}", s.getArticle)
	r.Get("/healthz", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type articleResponse struct {
	ID          string         `json:"id"`
	Link        string         `json:"link"`
	Title       string         `json:"title"`
	Author      string         `json:"author,omitempty"`
	Image       string         `json:"image,omitempty"`
	Date        *time.Time     `json:"date,omitempty"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Content     []contentBlock `json:"content,omitempty"`
}

type contentBlock struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type searchResponse struct {
	Count   int               `json:"count"`
	Results []articleResponse `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// searchNews handles GET /news.
//
// Query params: find (search terms), page, limit, period. Without find
// it lists the newest articles. List entries omit content; it is only
// serialized on single-article fetch.
func (s *Server) searchNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	period, err := domain.ParsePeriod(q.Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_period", err.Error())
		return
	}
	page, err := parsePositiveInt(q.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
		return
	}

	total, articles, err := s.news.Search(r.Context(), q.Get("find"), page, limit, period)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]articleResponse, len(articles))
	for i, a := range articles {
		results[i] = articleToResponse(a, false)
	}
	writeJSON(w, http.StatusOK, searchResponse{Count: total, Results: results})
}

// getArticle handles GET /news/{id}.
func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := s.news.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articleToResponse(a, true))
}

// healthCheck handles GET /healthz.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.pingers))
	for name, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}

func articleToResponse(a domain.Article, includeContent bool) articleResponse {
	resp := articleResponse{
		ID:          a.ID,
		Link:        a.Link,
		Title:       a.Title,
		Author:      a.Author,
		Image:       a.Image,
		Description: a.Description,
		Tags:        a.Tags,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if !a.Date.IsZero() {
		d := a.Date
		resp.Date = &d
	}
	if includeContent {
		resp.Content = make([]contentBlock, len(a.Content))
		for i, b := range a.Content {
			resp.Content[i] = contentBlock{Kind: string(b.Kind), Value: b.Value}
		}
	}
	return resp
}

func parsePositiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrArticleNotFound,
		domain.ErrUpstreamFetch,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
