package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/observe"
	"github.com/felixgeelhaar/zenith/internal/plugin"
	"github.com/felixgeelhaar/zenith/internal/repo"
	"github.com/felixgeelhaar/zenith/internal/sentiment"
	"github.com/felixgeelhaar/zenith/internal/session"
)

func zenithDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".zenith")
}

func newObserver() *observe.Observer {
	if ciMode {
		return observe.NewJSON(os.Stdout, verbose)
	}
	return observe.New(os.Stdout, verbose)
}

func loadConfig(obs *observe.Observer) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to load config")
	}
	return cfg
}

// openStore builds the session store over the SQLite repository at
// ~/.zenith/zenith.db. The returned repository must be closed.
func openStore(obs *observe.Observer) (*session.Store, repo.Repository) {
	r, err := repo.NewSQLite(filepath.Join(zenithDir(), "zenith.db"))
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to init storage")
	}
	return session.NewStore(r, obs), r
}

// newClassifier wires the keyword classifier with the configured
// estimator backend. A plugin path takes precedence over the built-in
// providers; estimator construction is deferred until first use.
func newClassifier(obs *observe.Observer, cfg *Config) *emotion.Classifier {
	factory := func(ctx context.Context) (emotion.Estimator, error) {
		if cfg.PluginPath != "" {
			return plugin.NewClient(cfg.PluginPath)
		}
		return sentiment.New(sentiment.Config{
			Provider: cfg.Provider,
			Model:    cfg.Model,
			APIKey:   apiKeyFor(cfg.Provider),
			BaseURL:  cfg.BaseURL,
		})
	}
	return emotion.NewClassifier(obs, factory)
}

func apiKeyFor(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
