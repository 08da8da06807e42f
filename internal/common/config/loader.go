// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like PROXY_LISTEN_ADDR
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored if not present
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root so
// binaries and tests behave the same regardless of where they run.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "paperforge"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Proxy.ListenAddr == "" {
		cfg.Proxy.ListenAddr = ":8080"
	}
	if cfg.Proxy.Attempts <= 0 {
		cfg.Proxy.Attempts = 3
	}
	if cfg.Proxy.AttemptTimeoutMs <= 0 {
		cfg.Proxy.AttemptTimeoutMs = 5000
	}
	if cfg.Proxy.CacheTTLHours <= 0 {
		cfg.Proxy.CacheTTLHours = 6
	}
	if cfg.Proxy.StaleTTLHours <= 0 {
		cfg.Proxy.StaleTTLHours = 24
	}
	if cfg.Proxy.MaxBodyBytes <= 0 {
		cfg.Proxy.MaxBodyBytes = 20 << 20
	}

	if cfg.Assembler.MaxMergedBytes <= 0 {
		cfg.Assembler.MaxMergedBytes = 15 << 20
	}
	if cfg.Assembler.CacheEntries <= 0 {
		cfg.Assembler.CacheEntries = 32
	}
	if cfg.Assembler.CacheTTLMinutes <= 0 {
		cfg.Assembler.CacheTTLMinutes = 30
	}

	if cfg.Orchestrator.MaxBatch <= 0 {
		cfg.Orchestrator.MaxBatch = 30
	}
	if cfg.Orchestrator.Attempts <= 0 {
		cfg.Orchestrator.Attempts = 3
	}
	if cfg.Orchestrator.InitialBackoffMs <= 0 {
		cfg.Orchestrator.InitialBackoffMs = 500
	}

	for i := range cfg.Upstream.Candidates {
		c := &cfg.Upstream.Candidates[i]
		if c.Kind == "" {
			c.Kind = "direct"
		}
		if c.TimeoutMs <= 0 {
			if c.Kind == "proxy" {
				c.TimeoutMs = 55000
			} else {
				c.TimeoutMs = 25000
			}
		}
	}

	if cfg.History.Index == "" {
		cfg.History.Index = "papers"
	}
}

func validateConfig(cfg *Config) error {
	for _, c := range cfg.Upstream.Candidates {
		if _, err := url.ParseRequestURI(c.URL); err != nil {
			return fmt.Errorf("upstream candidate %q: %w", c.URL, err)
		}
		if c.Kind != "direct" && c.Kind != "proxy" {
			return fmt.Errorf("upstream candidate %q: unknown kind %q", c.URL, c.Kind)
		}
	}
	for _, t := range cfg.Proxy.Targets {
		if _, err := url.ParseRequestURI(t); err != nil {
			return fmt.Errorf("proxy target %q: %w", t, err)
		}
	}
	if cfg.Notify.Enabled {
		if cfg.Notify.Region == "" || cfg.Notify.Sender == "" {
			return fmt.Errorf("notify enabled but region or sender missing")
		}
	}
	return nil
}
