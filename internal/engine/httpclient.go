package engine

import (
	"net/http"
	"time"
)

// User-Agent string used across HTTP clients.
const UserAgentBot = "IntroDiscovery/1.0"

// NewHTTPClient builds the shared HTTP client with sane pooling defaults.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
}
