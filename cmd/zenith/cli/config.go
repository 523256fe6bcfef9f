package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the user-level configuration loaded from
// ~/.zenith/config.yaml. Missing file or fields fall back to defaults;
// API keys come from the environment, never from the file.
type Config struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	PluginPath string `yaml:"plugin_path"`
	ReplyURL   string `yaml:"reply_url"`

	RecommendationLimit int `yaml:"recommendation_limit"`
	WordCloudLimit      int `yaml:"word_cloud_limit"`
	ArchiveDays         int `yaml:"archive_days"`
}

func defaultConfig() *Config {
	return &Config{
		Provider:            "ollama",
		ReplyURL:            "http://localhost:5000",
		RecommendationLimit: 5,
		WordCloudLimit:      20,
		ArchiveDays:         90,
	}
}

// LoadConfig reads the config file at path, or the default location
// when path is empty. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = filepath.Join(zenithDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.RecommendationLimit <= 0 {
		cfg.RecommendationLimit = defaultConfig().RecommendationLimit
	}
	if cfg.WordCloudLimit <= 0 {
		cfg.WordCloudLimit = defaultConfig().WordCloudLimit
	}
	if cfg.ArchiveDays <= 0 {
		cfg.ArchiveDays = defaultConfig().ArchiveDays
	}

	return cfg, nil
}
