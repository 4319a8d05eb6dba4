package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	DiscoveryRequests   atomic.Int64
	ProviderRequests    atomic.Int64
	ProviderErrors      atomic.Int64
	ProviderRateLimits  atomic.Int64
	ProviderFallbacks   atomic.Int64
	ExtractionDrops     atomic.Int64
	UnderstandCalls     atomic.Int64
	UnderstandErrors    atomic.Int64
	CitationResolutions atomic.Int64
	ProfileLookups      atomic.Int64
}

// Incrementors for sub-packages (search, discover).
func IncrDiscoveryRequests()   { metrics.DiscoveryRequests.Add(1) }
func IncrProviderRequests()    { metrics.ProviderRequests.Add(1) }
func IncrProviderErrors()      { metrics.ProviderErrors.Add(1) }
func IncrProviderRateLimits()  { metrics.ProviderRateLimits.Add(1) }
func IncrProviderFallbacks()   { metrics.ProviderFallbacks.Add(1) }
func IncrExtractionDrops()     { metrics.ExtractionDrops.Add(1) }
func IncrUnderstandCalls()     { metrics.UnderstandCalls.Add(1) }
func IncrUnderstandErrors()    { metrics.UnderstandErrors.Add(1) }
func IncrCitationResolutions() { metrics.CitationResolutions.Add(1) }
func IncrProfileLookups()      { metrics.ProfileLookups.Add(1) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"discovery_requests":   metrics.DiscoveryRequests.Load(),
		"provider_requests":    metrics.ProviderRequests.Load(),
		"provider_errors":      metrics.ProviderErrors.Load(),
		"provider_rate_limits": metrics.ProviderRateLimits.Load(),
		"provider_fallbacks":   metrics.ProviderFallbacks.Load(),
		"extraction_drops":     metrics.ExtractionDrops.Load(),
		"understand_calls":     metrics.UnderstandCalls.Load(),
		"understand_errors":    metrics.UnderstandErrors.Load(),
		"citation_resolutions": metrics.CitationResolutions.Load(),
		"profile_lookups":      metrics.ProfileLookups.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"discovery_requests",
		"provider_requests", "provider_errors", "provider_rate_limits", "provider_fallbacks",
		"extraction_drops",
		"understand_calls", "understand_errors",
		"citation_resolutions", "profile_lookups",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
