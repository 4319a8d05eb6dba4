// intro is the opportunity discovery MCP server.
//
// Exposes opportunity_discover, citation_resolve, and the saved-opportunity
// tools. Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/viper"

	"github.com/ghsmc/intro-v2-sub000/internal/careerserver"
	"github.com/ghsmc/intro-v2-sub000/internal/engine"
	"github.com/ghsmc/intro-v2-sub000/internal/engine/discover"
	"github.com/ghsmc/intro-v2-sub000/internal/engine/search"
)

var version = "dev"

func main() {
	initConfig()
	initEngine()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "intro",
		Version: version,
	}, nil)

	careerserver.SetPipeline(buildPipeline())
	if store, err := discover.OpenSavedStore(engine.Cfg.SavedDBPath); err != nil {
		slog.Warn("saved store init failed", slog.Any("error", err))
	} else {
		careerserver.SetSavedStore(store)
	}

	careerserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 5))

	if viper.GetBool("stdio") {
		if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	port := viper.GetString("mcp_port")
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil))
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(engine.FormatMetrics()))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	slog.Info("starting intro", slog.String("port", port))
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mcp_port", "8891")
	viper.SetDefault("stdio", false)
	viper.SetDefault("searxng_url", "http://127.0.0.1:8888")
	viper.SetDefault("brave_api_key", "")
	viper.SetDefault("provider_rate_limit", 2.0)
	viper.SetDefault("query_timeout", 8*time.Second)
	viper.SetDefault("request_timeout", 30*time.Second)
	viper.SetDefault("pool_size", 5)
	viper.SetDefault("max_expansions", 15)
	viper.SetDefault("max_results", 20)
	viper.SetDefault("llm_api_base", "")
	viper.SetDefault("llm_api_key", "")
	viper.SetDefault("llm_model", "gpt-4o-mini")
	viper.SetDefault("cache_ttl", 15*time.Minute)
	viper.SetDefault("cache_max_entries", 1000)
	viper.SetDefault("cache_cleanup_interval", 300*time.Second)
	viper.SetDefault("redis_url", "")
	viper.SetDefault("database_url", "")
	viper.SetDefault("saved_db_path", "")

	// Optional config file alongside the binary.
	viper.SetConfigName("intro")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err == nil {
		slog.Info("config loaded", slog.String("file", viper.ConfigFileUsed()))
	}
}

func initEngine() {
	c := engine.Config{
		SearxngURL:           viper.GetString("searxng_url"),
		BraveAPIKey:          viper.GetString("brave_api_key"),
		ProviderRateLimit:    viper.GetFloat64("provider_rate_limit"),
		QueryTimeout:         viper.GetDuration("query_timeout"),
		RequestTimeout:       viper.GetDuration("request_timeout"),
		PoolSize:             viper.GetInt("pool_size"),
		MaxExpansions:        viper.GetInt("max_expansions"),
		MaxResults:           viper.GetInt("max_results"),
		LLMAPIBase:           viper.GetString("llm_api_base"),
		LLMAPIKey:            viper.GetString("llm_api_key"),
		LLMModel:             viper.GetString("llm_model"),
		CacheMaxEntries:      viper.GetInt("cache_max_entries"),
		CacheCleanupInterval: viper.GetDuration("cache_cleanup_interval"),
		DatabaseURL:          viper.GetString("database_url"),
		SavedDBPath:          viper.GetString("saved_db_path"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	engine.Init(c)

	engine.InitCache(viper.GetString("redis_url"), viper.GetDuration("cache_ttl"),
		c.CacheMaxEntries, c.CacheCleanupInterval)
}

// buildPipeline wires the ordered provider chain and optional services from
// engine config.
func buildPipeline() *discover.Pipeline {
	var providers []search.Provider
	if engine.Cfg.SearxngURL != "" {
		providers = append(providers, search.NewSearxng(engine.Cfg.SearxngURL, engine.Cfg.HTTPClient, engine.Cfg.ProviderRateLimit))
	}
	if engine.Cfg.BraveAPIKey != "" {
		providers = append(providers, search.NewBrave(engine.Cfg.BraveAPIKey, engine.Cfg.HTTPClient, engine.Cfg.ProviderRateLimit))
	}
	if len(providers) == 0 {
		slog.Warn("no search providers configured, discovery will return empty results")
	}

	var understanding engine.Understanding
	if engine.Cfg.LLMAPIBase != "" {
		u, err := engine.NewLLMUnderstanding()
		if err != nil {
			slog.Warn("text understanding init failed", slog.Any("error", err))
		} else {
			understanding = u
			slog.Info("text understanding ready", slog.String("model", engine.Cfg.LLMModel))
		}
	}

	var profiles discover.ProfileStore
	if engine.Cfg.DatabaseURL != "" {
		db, err := discover.ConnectProfileDB(context.Background(), engine.Cfg.DatabaseURL)
		if err != nil {
			slog.Warn("profile DB init failed", slog.Any("error", err))
		} else {
			profiles = db
			slog.Info("profile DB initialized")
		}
	}

	return discover.NewPipeline(discover.Options{
		Providers:     providers,
		Understanding: understanding,
		Profiles:      profiles,
		PoolSize:      engine.Cfg.PoolSize,
		QueryTimeout:  engine.Cfg.QueryTimeout,
	})
}
