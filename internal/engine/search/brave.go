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

const braveSearchURL = "https://api.search.brave.com/res/v1/web/search"

// braveResponse is the subset of the Brave Search API response we read.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			PageAge     string `json:"page_age"`
		} `json:"results"`
	} `json:"web"`
}

// Brave queries the Brave Search JSON API.
type Brave struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewBrave builds a Brave Search provider client.
func NewBrave(apiKey string, client *http.Client, rps float64) *Brave {
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Brave{apiKey: apiKey, client: client, limiter: lim}
}

func (b *Brave) ID() string { return "brave" }

// Search issues one query and returns raw hits.
func (b *Brave) Search(ctx context.Context, query string) ([]RawResultItem, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u, err := url.Parse(braveSearchURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", "20")
	u.RawQuery = q.Encode()

	engine.IncrProviderRequests()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		return b.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave status %d", resp.StatusCode)
	}

	var data braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("brave decode: %w", err)
	}

	items := make([]RawResultItem, 0, len(data.Web.Results))
	for _, r := range data.Web.Results {
		item := RawResultItem{
			ProviderID: b.ID(),
			Title:      r.Title,
			URL:        r.URL,
			Snippet:    engine.CleanHTML(r.Description),
		}
		if r.PageAge != "" {
			if ts, err := time.Parse(time.RFC3339, r.PageAge); err == nil {
				item.PublishedAt = &ts
			}
		}
		items = append(items, item)
	}
	return items, nil
}
