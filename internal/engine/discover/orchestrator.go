package discover

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
	"github.com/ghsmc/intro-v2-sub000/internal/engine/search"
)

// Orchestrator fans expanded queries out across provider clients.
// Providers are ordered: primary first, fallbacks after. A query that fails
// or is rate-limited on one provider is retried once against the next in the
// chain. Failures are isolated per query and never cancel sibling queries.
type Orchestrator struct {
	providers    []search.Provider
	poolSize     int
	queryTimeout time.Duration
}

// NewOrchestrator builds an orchestrator over an ordered provider chain.
func NewOrchestrator(providers []search.Provider, poolSize int, queryTimeout time.Duration) *Orchestrator {
	if poolSize <= 0 {
		poolSize = 5
	}
	if queryTimeout <= 0 {
		queryTimeout = 8 * time.Second
	}
	return &Orchestrator{providers: providers, poolSize: poolSize, queryTimeout: queryTimeout}
}

// Run executes all expanded queries concurrently on a bounded pool and joins
// them. Raw items are returned grouped in query order, so output is
// deterministic regardless of completion order. Per-query stats always have
// one entry per expanded query, in intent order.
//
// An exhausted provider chain yields an empty contribution for that query,
// never an error: partial results are preferable to none.
func (o *Orchestrator) Run(ctx context.Context, intent SearchIntent) ([]search.RawResultItem, []QueryStats) {
	queries := intent.ExpandedQueries
	if len(queries) == 0 || len(o.providers) == 0 {
		return nil, nil
	}

	results := make([]queryResult, len(queries))

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		// Pool construction only fails on invalid size; fall back to serial.
		slog.Warn("orchestrator: pool init failed, running serial", slog.Any("error", err))
		for i, q := range queries {
			results[i] = o.runQuery(ctx, q)
		}
		return flatten(results)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		i, q := i, q
		task := func() {
			defer wg.Done()
			results[i] = o.runQuery(ctx, q)
		}
		if err := pool.Submit(task); err != nil {
			// Released pool or overload: run inline rather than dropping the query.
			task()
		}
	}
	wg.Wait()

	return flatten(results)
}

// runQuery walks the provider chain for one query.
func (o *Orchestrator) runQuery(ctx context.Context, query string) queryResult {
	stats := QueryStats{Query: query}
	start := time.Now()

	if ctx.Err() != nil {
		stats.Outcome = OutcomeTimedOut
		stats.Error = ctx.Err().Error()
		return queryResult{stats: stats}
	}

	var lastErr error
	for i, p := range o.providers {
		qctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
		items, err := p.Search(qctx, query)
		cancel()

		if err == nil {
			stats.ProviderID = p.ID()
			stats.LatencyMS = time.Since(start).Milliseconds()
			stats.ResultCount = len(items)
			stats.Outcome = OutcomeOK
			stats.FellBack = i > 0
			if i > 0 {
				engine.IncrProviderFallbacks()
			}
			return queryResult{items: items, stats: stats}
		}

		lastErr = err
		switch {
		case errors.Is(err, engine.ErrRateLimited):
			engine.IncrProviderRateLimits()
			slog.Debug("provider rate limited", slog.String("provider", p.ID()), slog.String("query", query))
		case errors.Is(err, context.DeadlineExceeded):
			engine.IncrProviderErrors()
			slog.Debug("provider timed out", slog.String("provider", p.ID()), slog.String("query", query))
		default:
			engine.IncrProviderErrors()
			slog.Debug("provider failed", slog.String("provider", p.ID()), slog.String("query", query), slog.Any("error", err))
		}

		if ctx.Err() != nil {
			break // outer deadline: stop walking the chain
		}
	}

	stats.LatencyMS = time.Since(start).Milliseconds()
	stats.Error = lastErr.Error()
	switch {
	case errors.Is(lastErr, engine.ErrRateLimited):
		stats.Outcome = OutcomeRateLimited
	case errors.Is(lastErr, context.DeadlineExceeded):
		stats.Outcome = OutcomeTimedOut
	default:
		stats.Outcome = OutcomeFailed
	}
	return queryResult{stats: stats}
}

// flatten merges per-query results preserving query order.
func flatten(results []queryResult) ([]search.RawResultItem, []QueryStats) {
	var items []search.RawResultItem
	stats := make([]QueryStats, 0, len(results))
	for _, r := range results {
		items = append(items, r.items...)
		stats = append(stats, r.stats)
	}
	return items, stats
}
