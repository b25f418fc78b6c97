package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the debate system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Debate    DebateConfig    `mapstructure:"debate"`
	Research  ResearchConfig  `mapstructure:"research"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address       string `mapstructure:"address"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	StreamEnabled bool   `mapstructure:"stream_enabled"`
}

// LLMConfig contains the LLM provider configuration
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.Provider) == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// DebateConfig contains debate session settings
type DebateConfig struct {
	MaxRounds          int `mapstructure:"max_rounds"`
	HistoryPreviewLen  int `mapstructure:"history_preview_len"`
	EarningsLimit      int `mapstructure:"earnings_limit"`
	InsiderLimit       int `mapstructure:"insider_limit"`
	HoldingsLimit      int `mapstructure:"holdings_limit"`
	ReportsLimit       int `mapstructure:"reports_limit"`
	TranscriptsLimit   int `mapstructure:"transcripts_limit"`
	FilingsLimit       int `mapstructure:"filings_limit"`
}

// Normalize applies defaults for unset debate values.
func (d DebateConfig) Normalize() DebateConfig {
	if d.MaxRounds <= 0 {
		d.MaxRounds = 3
	}
	if d.HistoryPreviewLen <= 0 {
		d.HistoryPreviewLen = 500
	}
	if d.EarningsLimit <= 0 {
		d.EarningsLimit = 4
	}
	if d.InsiderLimit <= 0 {
		d.InsiderLimit = 5
	}
	if d.HoldingsLimit <= 0 {
		d.HoldingsLimit = 5
	}
	if d.ReportsLimit <= 0 {
		d.ReportsLimit = 5
	}
	if d.TranscriptsLimit <= 0 {
		d.TranscriptsLimit = 3
	}
	if d.FilingsLimit <= 0 {
		d.FilingsLimit = 3
	}
	return d
}

// ResearchConfig contains research provider settings
type ResearchConfig struct {
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	IndexPath string          `mapstructure:"index_path"`
	CacheTTL  time.Duration   `mapstructure:"cache_ttl"`
}

// WarehouseConfig points at the financial research warehouse (Postgres)
type WarehouseConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Configured reports whether a warehouse connection is specified at all.
func (w WarehouseConfig) Configured() bool {
	return strings.TrimSpace(w.URL) != "" || strings.TrimSpace(w.Host) != ""
}

// DSN builds a postgres connection string from the configured fields.
func (w WarehouseConfig) DSN() (string, error) {
	if strings.TrimSpace(w.URL) != "" {
		return w.URL, nil
	}
	host := w.Host
	port := w.Port
	ssl := w.SSLMode
	if host == "" || w.DBName == "" {
		return "", fmt.Errorf("warehouse not configured (research.warehouse.host/dbname or url)")
	}
	if port == "" {
		port = "5432"
	}
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", w.User, w.Password, host, port, w.DBName, ssl), nil
}

// StorageConfig contains session store and cache connections
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains the session store connection
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a postgres connection string from the configured fields.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	port := p.Port
	ssl := p.SSLMode
	if port == "" {
		port = "5432"
	}
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// RedisConfig contains the research cache connection
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Configured reports whether a redis connection is specified.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.Host) != ""
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	MetricsPort  int    `mapstructure:"metrics_port"`
	CostTracking bool   `mapstructure:"cost_tracking"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort < 0 {
		return fmt.Errorf("telemetry.metrics_port cannot be negative")
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", "120s")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("server.stream_enabled", true)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.timeout", "60s")
	viper.SetDefault("debate.max_rounds", 3)
	viper.SetDefault("research.cache_ttl", "1h")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config") // path to look for the config file in
		viper.AddConfigPath(".")        // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)                                // bin/
		viper.AddConfigPath(filepath.Join(exeDir, ".."))           // repo root
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config")) // repo root/config
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("BULLBEAR")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (BULLBEAR_*)

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {             // Handle errors reading the config file
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	// unmarshal config
	var config Config

	if err = viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	config.Debate = config.Debate.Normalize()

	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Telemetry.Validate(); err != nil {
		panic(err)
	}
	return &config
}
