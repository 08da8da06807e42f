// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Upstream     UpstreamConfig     `mapstructure:"upstream"`
	Proxy        ProxyConfig        `mapstructure:"proxy"`
	Assembler    AssemblerConfig    `mapstructure:"assembler"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Database     DatabaseConfig     `mapstructure:"database"`
	History      HistoryConfig      `mapstructure:"history"`
	Notify       NotifyConfig       `mapstructure:"notify"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// --- Generation pipeline ---

// EndpointConfig is one candidate endpoint for the dispatcher, tried in the
// order configured. Kind is "direct" or "proxy"; proxy endpoints get a longer
// budget because they retry the upstream themselves.
type EndpointConfig struct {
	URL       string `mapstructure:"url"`
	Kind      string `mapstructure:"kind"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type UpstreamConfig struct {
	Candidates []EndpointConfig `mapstructure:"candidates"`
}

type ProxyConfig struct {
	ListenAddr       string   `mapstructure:"listen_addr"`
	Targets          []string `mapstructure:"targets"`
	Attempts         int      `mapstructure:"attempts"`
	AttemptTimeoutMs int      `mapstructure:"attempt_timeout_ms"`
	CacheTTLHours    int      `mapstructure:"cache_ttl_hours"`
	StaleTTLHours    int      `mapstructure:"stale_ttl_hours"`
	MaxBodyBytes     int64    `mapstructure:"max_body_bytes"`
}

type AssemblerConfig struct {
	MaxMergedBytes  int64 `mapstructure:"max_merged_bytes"`
	CacheEntries    int   `mapstructure:"cache_entries"`
	CacheTTLMinutes int   `mapstructure:"cache_ttl_minutes"`
}

type OrchestratorConfig struct {
	MaxBatch         int `mapstructure:"max_batch"`
	Attempts         int `mapstructure:"attempts"`
	InitialBackoffMs int `mapstructure:"initial_backoff_ms"`
}

// --- Persistence ---

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Sender  string `mapstructure:"sender"`
}
