// Package scraper implements the scrape provider against the
// laptopmag.com search and article pages.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/LLkaia/news-laptops-ms/internal/domain"
)

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9," +
	"image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"

// Config holds scraper settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client scrapes search listings and article bodies.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// New creates a scraper client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

// SearchByQuery scrapes the best-pick search listing for the query and
// returns raw articles with empty content. The query words become the
// articles' initial tag set.
func (c *Client) SearchByQuery(ctx context.Context, query string) ([]domain.RawArticle, error) {
	searchURL := fmt.Sprintf(
		"%s/search?searchTerm=%s&articleType=best-pick",
		c.baseURL, url.QueryEscape(query),
	)

	doc, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	tags := domain.TokenizeQuery(query)

	var articles []domain.RawArticle
	doc.Find("div.listingResult").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a.article-link").AttrOr("href", "")
		if link == "" {
			return
		}
		articles = append(articles, domain.RawArticle{
			Link:        link,
			Title:       strings.TrimSpace(sel.Find("h3.article-name").Text()),
			Author:      strings.TrimSpace(sel.Find("span[style='white-space:nowrap']").Text()),
			Image:       sel.Find("img").AttrOr("data-pin-media", ""),
			Date:        parseListingDate(sel.Find("time").AttrOr("datetime", "")),
			Description: strings.TrimSpace(sel.Find("p.synopsis").Text()),
			Tags:        tags,
		})
	})

	return articles, nil
}

// FetchContent scrapes the ordered content blocks of an article body.
func (c *Client) FetchContent(ctx context.Context, link string) ([]domain.ContentBlock, error) {
	doc, err := c.fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	var blocks []domain.ContentBlock
	doc.Find("div#article-body").Children().Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "p":
			text := strings.ReplaceAll(sel.Text(), "\u00a0", " ")
			blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockParagraph, Value: text})
		case "h2":
			blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockTitle, Value: sel.Text()})
		case "figure":
			if img := sel.Find("img").AttrOr("data-pin-media", ""); img != "" {
				blocks = append(blocks, domain.ContentBlock{Kind: domain.BlockImage, Value: img})
			}
		}
	})

	return blocks, nil
}

// fetch performs a GET and parses the response body. All failure modes
// wrap ErrUpstreamFetch so callers can treat scrape failures uniformly.
func (c *Client) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request %s: %w", domain.ErrUpstreamFetch, rawURL, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrUpstreamFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s: status %d", domain.ErrUpstreamFetch, rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrUpstreamFetch, rawURL, err)
	}
	return doc, nil
}

// parseListingDate parses the datetime attribute of a listing entry.
// A missing or malformed date yields the zero time: the article still
// ingests, it just sorts last and never matches a period window.
func parseListingDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
