package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
)

// searxngResult is the SearXNG JSON result shape.
type searxngResult struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	URL           string  `json:"url"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"publishedDate"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

// Searxng queries a SearXNG meta-search instance.
type Searxng struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewSearxng builds a SearXNG provider client.
// rps caps outgoing requests per second (0 = unlimited).
func NewSearxng(baseURL string, client *http.Client, rps float64) *Searxng {
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Searxng{baseURL: baseURL, client: client, limiter: lim}
}

func (s *Searxng) ID() string { return "searxng" }

// Search issues one query and returns raw hits.
func (s *Searxng) Search(ctx context.Context, query string) ([]RawResultItem, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u, err := url.Parse(s.baseURL + "/search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	engine.IncrProviderRequests()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		return s.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng status %d", resp.StatusCode)
	}

	var data searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("searxng decode: %w", err)
	}

	items := make([]RawResultItem, 0, len(data.Results))
	for _, r := range data.Results {
		item := RawResultItem{
			ProviderID: s.ID(),
			Title:      r.Title,
			URL:        r.URL,
			Snippet:    engine.CleanHTML(r.Content),
		}
		if r.PublishedDate != "" {
			if ts, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
				item.PublishedAt = &ts
			}
		}
		items = append(items, item)
	}
	return items, nil
}
