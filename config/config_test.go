package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RFQ_MIN_READINESS", "60")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("AUTO_ANALYZE_QUOTES", "true")
	t.Setenv("LLM_PROVIDER", "rules")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 60, cfg.RFQMinReadiness)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.AutoAnalyzeQuotes)
	assert.Equal(t, ProviderRules, cfg.LLMProvider)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "addr: \":9090\"\njwt_secret: from-file\ndb_name: sourcing_test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "sourcing_test", cfg.DBName)
	assert.Equal(t, "from-env", cfg.JWTSecret, "environment must win over the file")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "missing jwt secret")

	cfg.JWTSecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.LLMProvider = "mystery"
	assert.Error(t, cfg.Validate())

	cfg.LLMProvider = ProviderGemini
	cfg.RFQMinReadiness = 101
	assert.Error(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Default()
	cfg.CORSOrigins = " https://app.example.com, ,http://localhost:3000 "
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins())
}
