package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SearxngURL           string        // SearXNG instance base URL ("" = provider disabled)
	BraveAPIKey          string        // Brave Search API key ("" = provider disabled)
	ProviderRateLimit    float64       // max requests/sec per provider client (0 = unlimited)
	QueryTimeout         time.Duration // per-query provider call timeout
	RequestTimeout       time.Duration // outer timeout for one discovery request
	PoolSize             int           // bounded fan-out pool size
	MaxExpansions        int           // cap on expanded queries per request
	MaxResults           int           // default ranked-candidate limit per response
	LLMAPIBase           string        // OpenAI-compatible API base for text understanding
	LLMAPIKey            string
	LLMModel             string
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	DatabaseURL          string // Postgres profile store ("" = profiles disabled)
	SavedDBPath          string // sqlite saved-opportunities path ("" = default under $HOME)
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (search, discover).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = NewHTTPClient()
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 8 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.PoolSize == 0 {
		c.PoolSize = 5
	}
	if c.MaxExpansions == 0 {
		c.MaxExpansions = 15
	}
	if c.MaxResults == 0 {
		c.MaxResults = 20
	}
	cfg = c
}
