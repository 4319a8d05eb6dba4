package discover

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
	"github.com/ghsmc/intro-v2-sub000/internal/engine/search"
)

// fakeProvider scripts per-query outcomes for orchestrator tests.
type fakeProvider struct {
	id    string
	mu    sync.Mutex
	calls []string
	// respond maps query → items or error; missing queries fall back to the
	// defaults.
	items        map[string][]search.RawResultItem
	errs         map[string]error
	defaultItems []search.RawResultItem
	defaultErr   error
	delay        time.Duration
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Search(ctx context.Context, query string) ([]search.RawResultItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	if f.defaultErr != nil {
		return nil, f.defaultErr
	}
	if items, ok := f.items[query]; ok {
		return items, nil
	}
	return f.defaultItems, nil
}

func item(provider, title, url string) search.RawResultItem {
	return search.RawResultItem{ProviderID: provider, Title: title, URL: url, Snippet: title + " hiring apply"}
}

func TestOrchestratorRun(t *testing.T) {
	intent := SearchIntent{
		RawQuery:        "ml engineer",
		ExpandedQueries: []string{"q1", "q2", "q3"},
	}

	t.Run("happy path single provider", func(t *testing.T) {
		p := &fakeProvider{id: "a", items: map[string][]search.RawResultItem{
			"q1": {item("a", "Job 1", "https://x.com/1")},
			"q2": {item("a", "Job 2", "https://x.com/2")},
			"q3": {item("a", "Job 3", "https://x.com/3")},
		}}
		o := NewOrchestrator([]search.Provider{p}, 2, time.Second)
		items, stats := o.Run(context.Background(), intent)

		assert.Len(t, items, 3)
		require.Len(t, stats, 3)
		for i, s := range stats {
			assert.Equal(t, intent.ExpandedQueries[i], s.Query, "stats preserve query order")
			assert.Equal(t, OutcomeOK, s.Outcome)
			assert.False(t, s.FellBack)
		}
	})

	t.Run("rate limited query falls back to secondary", func(t *testing.T) {
		primary := &fakeProvider{id: "a",
			items: map[string][]search.RawResultItem{"q1": {item("a", "A1", "https://a.com/1")}},
			errs:  map[string]error{"q2": engine.ErrRateLimited, "q3": engine.ErrRateLimited},
		}
		fallback := &fakeProvider{id: "b", items: map[string][]search.RawResultItem{
			"q2": {item("b", "B2", "https://b.com/2")},
			"q3": {item("b", "B3", "https://b.com/3")},
		}}
		o := NewOrchestrator([]search.Provider{primary, fallback}, 3, time.Second)
		items, stats := o.Run(context.Background(), intent)

		assert.Len(t, items, 3)
		providers := map[string]bool{}
		for _, it := range items {
			providers[it.ProviderID] = true
		}
		assert.True(t, providers["a"] && providers["b"], "results from both providers")

		assert.Equal(t, "a", stats[0].ProviderID)
		assert.Equal(t, "b", stats[1].ProviderID)
		assert.True(t, stats[1].FellBack)
		assert.True(t, stats[2].FellBack)

		// fallback saw only the rate-limited queries
		assert.ElementsMatch(t, []string{"q2", "q3"}, fallback.calls)
	})

	t.Run("exhausted chain is an empty contribution not an error", func(t *testing.T) {
		primary := &fakeProvider{id: "a", errs: map[string]error{
			"q1": errors.New("boom"), "q2": errors.New("boom"), "q3": errors.New("boom"),
		}}
		fallback := &fakeProvider{id: "b", errs: map[string]error{
			"q1": engine.ErrRateLimited, "q2": engine.ErrRateLimited, "q3": engine.ErrRateLimited,
		}}
		o := NewOrchestrator([]search.Provider{primary, fallback}, 2, time.Second)
		items, stats := o.Run(context.Background(), intent)

		assert.Empty(t, items)
		require.Len(t, stats, 3)
		for _, s := range stats {
			assert.Equal(t, OutcomeRateLimited, s.Outcome)
			assert.NotEmpty(t, s.Error)
		}
	})

	t.Run("one slow query does not block others", func(t *testing.T) {
		slow := &fakeProvider{id: "a", delay: 5 * time.Second, items: map[string][]search.RawResultItem{}}
		o := NewOrchestrator([]search.Provider{slow}, 3, 50*time.Millisecond)

		start := time.Now()
		items, stats := o.Run(context.Background(), intent)
		elapsed := time.Since(start)

		assert.Empty(t, items)
		require.Len(t, stats, 3)
		for _, s := range stats {
			assert.Equal(t, OutcomeTimedOut, s.Outcome)
		}
		assert.Less(t, elapsed, 2*time.Second, "per-query timeouts ran concurrently")
	})

	t.Run("no expansions means nothing to search", func(t *testing.T) {
		p := &fakeProvider{id: "a"}
		o := NewOrchestrator([]search.Provider{p}, 2, time.Second)
		items, stats := o.Run(context.Background(), SearchIntent{RawQuery: ""})
		assert.Nil(t, items)
		assert.Nil(t, stats)
		assert.Empty(t, p.calls)
	})

	t.Run("cancelled outer context returns immediately", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := &fakeProvider{id: "a"}
		o := NewOrchestrator([]search.Provider{p}, 2, time.Second)
		_, stats := o.Run(ctx, intent)
		require.Len(t, stats, 3)
		for _, s := range stats {
			assert.Equal(t, OutcomeTimedOut, s.Outcome)
		}
	})
}
