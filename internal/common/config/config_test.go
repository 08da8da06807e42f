// internal/common/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Upstream.Candidates = []EndpointConfig{
		{URL: "https://api.example.com/generate"},
		{URL: "https://app.example.com/api/proxy", Kind: "proxy"},
	}

	applyDefaults(cfg)

	assert.Equal(t, "paperforge", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Proxy.ListenAddr)
	assert.Equal(t, 3, cfg.Proxy.Attempts)
	assert.Equal(t, 5000, cfg.Proxy.AttemptTimeoutMs)
	assert.Equal(t, 6, cfg.Proxy.CacheTTLHours)
	assert.Equal(t, 24, cfg.Proxy.StaleTTLHours)
	assert.Equal(t, int64(15<<20), cfg.Assembler.MaxMergedBytes)
	assert.Equal(t, 30, cfg.Orchestrator.MaxBatch)
	assert.Equal(t, 500, cfg.Orchestrator.InitialBackoffMs)

	// Direct candidates get the short budget, proxy candidates the long one.
	assert.Equal(t, "direct", cfg.Upstream.Candidates[0].Kind)
	assert.Equal(t, 25000, cfg.Upstream.Candidates[0].TimeoutMs)
	assert.Equal(t, 55000, cfg.Upstream.Candidates[1].TimeoutMs)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{"valid empty", func(cfg *Config) {}, false},
		{
			"bad candidate url",
			func(cfg *Config) {
				cfg.Upstream.Candidates = []EndpointConfig{{URL: "not a url", Kind: "direct"}}
			},
			true,
		},
		{
			"unknown candidate kind",
			func(cfg *Config) {
				cfg.Upstream.Candidates = []EndpointConfig{{URL: "https://ok.example.com", Kind: "carrier-pigeon"}}
			},
			true,
		},
		{
			"bad proxy target",
			func(cfg *Config) { cfg.Proxy.Targets = []string{"::broken::"} },
			true,
		},
		{
			"notify enabled without sender",
			func(cfg *Config) {
				cfg.Notify.Enabled = true
				cfg.Notify.Region = "us-east-1"
			},
			true,
		},
		{
			"notify fully configured",
			func(cfg *Config) {
				cfg.Notify.Enabled = true
				cfg.Notify.Region = "us-east-1"
				cfg.Notify.Sender = "noreply@paperforge.dev"
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresGetDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432, User: "app", Password: "secret",
		Database: "paperforge", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=app password=secret dbname=paperforge sslmode=disable",
		p.GetDSN())
}
