// Package config loads service settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderRules  = "rules"
)

type Config struct {
	Addr string `koanf:"addr"`

	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
	DBSSLMode  string `koanf:"db_sslmode"`

	JWTSecret  string        `koanf:"jwt_secret"`
	SessionTTL time.Duration `koanf:"session_ttl"`

	LLMProvider          string        `koanf:"llm_provider"`
	LLMBaseURL           string        `koanf:"llm_base_url"`
	LLMAPIKey            string        `koanf:"llm_api_key"`
	LLMModel             string        `koanf:"llm_model"`
	LLMTimeout           time.Duration `koanf:"llm_timeout"`
	LLMRequestsPerSecond float64       `koanf:"llm_requests_per_second"`
	GeminiAPIKey         string        `koanf:"gemini_api_key"`
	GeminiModel          string        `koanf:"gemini_model"`

	AutoAnalyzeQuotes bool   `koanf:"auto_analyze_quotes"`
	RFQMinReadiness   int    `koanf:"rfq_min_readiness"`
	PublicBaseURL     string `koanf:"public_base_url"`
	CORSOrigins       string `koanf:"cors_origins"`

	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     string `koanf:"smtp_port"`
	SMTPUser     string `koanf:"smtp_user"`
	SMTPPassword string `koanf:"smtp_password"`
	SMTPFrom     string `koanf:"smtp_from"`

	SessionCleanupSchedule string `koanf:"session_cleanup_schedule"`
	LogLevel               string `koanf:"log_level"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Addr:                   ":8080",
		DBHost:                 "localhost",
		DBPort:                 "5432",
		DBUser:                 "postgres",
		DBName:                 "sourcing",
		DBSSLMode:              "disable",
		SessionTTL:             12 * time.Hour,
		LLMProvider:            ProviderOpenAI,
		LLMBaseURL:             "https://api.openai.com/v1",
		LLMModel:               "gpt-4o-mini",
		LLMTimeout:             60 * time.Second,
		LLMRequestsPerSecond:   2,
		GeminiModel:            "gemini-2.5-flash",
		PublicBaseURL:          "http://localhost:3000",
		CORSOrigins:            "http://localhost:3000",
		SMTPPort:               "587",
		SessionCleanupSchedule: "30 2 * * *",
		LogLevel:               "info",
	}
}

// Load layers defaults, the YAML file at path (or CONFIG_FILE when path is
// empty) and environment variables, in increasing precedence. A .env file in
// the working directory is read first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DB_HOST -> db_host, LLM_API_KEY -> llm_api_key
	envProvider := env.Provider("", ".", strings.ToLower)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini, ProviderRules:
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}
	if c.RFQMinReadiness < 0 || c.RFQMinReadiness > 100 {
		return fmt.Errorf("rfq_min_readiness must be within 0..100, got %d", c.RFQMinReadiness)
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	return nil
}

// DSN builds the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=%s",
		c.DBUser, c.DBPassword, c.DBName, c.DBHost, c.DBPort, c.DBSSLMode)
}

// GormDSN builds the pgx-style DSN used by the gorm postgres driver.
func (c *Config) GormDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
