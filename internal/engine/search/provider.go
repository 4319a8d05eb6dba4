// Package search defines the provider contract for external search backends
// and the built-in provider clients (SearXNG, Brave).
package search

import (
	"context"
	"time"
)

// RawResultItem is one heterogeneous search hit as a provider returned it.
// Transient: discarded after extraction into a typed candidate.
type RawResultItem struct {
	ProviderID  string     `json:"provider_id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Snippet     string     `json:"snippet"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Provider is the contract every external search backend implements.
// Search returns the hits for one query string. A rate-limited backend
// reports engine.ErrRateLimited (via errors.Is); any other error is a hard
// failure for that query. Implementations must be safe for concurrent use.
type Provider interface {
	ID() string
	Search(ctx context.Context, query string) ([]RawResultItem, error)
}
