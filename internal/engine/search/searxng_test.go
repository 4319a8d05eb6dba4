package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
)

func TestSearxngSearch(t *testing.T) {
	t.Run("parses results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "ml engineer openai" {
				t.Errorf("unexpected query %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"results":[
				{"title":"ML Engineer at OpenAI","content":"<b>Apply now</b> for this role","url":"https://openai.com/careers/ml-engineer","score":9.1,"publishedDate":"2026-08-20T00:00:00Z"},
				{"title":"Layoffs hit tech","content":"news article","url":"https://news.example.com/layoffs","score":1.0}
			]}`))
		}))
		defer srv.Close()

		p := NewSearxng(srv.URL, srv.Client(), 0)
		items, err := p.Search(context.Background(), "ml engineer openai")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].ProviderID != "searxng" {
			t.Errorf("provider id %q", items[0].ProviderID)
		}
		if items[0].Snippet != "Apply now for this role" {
			t.Errorf("snippet not cleaned: %q", items[0].Snippet)
		}
		if items[0].PublishedAt == nil {
			t.Error("expected published timestamp")
		}
		if items[1].PublishedAt != nil {
			t.Error("expected nil timestamp when absent")
		}
	})

	t.Run("429 reports rate limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		p := NewSearxng(srv.URL, srv.Client(), 0)
		_, err := p.Search(context.Background(), "golang")
		if !errors.Is(err, engine.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("non-200 is a hard failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		p := NewSearxng(srv.URL, srv.Client(), 0)
		_, err := p.Search(context.Background(), "golang")
		if err == nil || errors.Is(err, engine.ErrRateLimited) {
			t.Fatalf("expected hard failure, got %v", err)
		}
	})
}
