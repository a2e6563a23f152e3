package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"ENVIRONMENT", "PORT", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
	"CORS_ALLOWED_ORIGINS", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_NAME",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "REDIS_URL", "JWT_SECRET",
	"ANTHROPIC_API_KEY", "GOOGLE_GEMINI_API_KEY", "WATSONX_API_KEY", "WATSONX_PROJECT_ID",
	"WATSONX_URL", "RAG_TOP_K", "RAG_SIMILARITY_THRESHOLD", "RATE_LIMIT_GENERATIONS_PER_HOUR",
	"LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{"ENVIRONMENT": "development"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "genos", cfg.Database.User)
				assert.False(t, cfg.Redis.Enabled())
				assert.Equal(t, "https://us-south.ml.cloud.ibm.com", cfg.Providers.Watsonx.BaseURL)
				assert.Equal(t, "https://iam.cloud.ibm.com/identity/token", cfg.Providers.Watsonx.IAMURL)
				assert.Equal(t, "claude-sonnet-4-6", cfg.Providers.Anthropic.Model)
				assert.Equal(t, "gemini-2.0-flash", cfg.Providers.Gemini.Model)
				assert.Equal(t, 5, cfg.RAG.TopK)
				assert.Equal(t, 0.3, cfg.RAG.SimilarityThreshold)
				assert.Equal(t, 200, cfg.RAG.ContentItemLimit)
				assert.Equal(t, 100, cfg.RateLimit.GenerationsPerHour)
			},
		},
		{
			name: "missing provider credentials do not fail startup",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"JWT_SECRET":  "secret",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsProduction())
				assert.Empty(t, cfg.Providers.Anthropic.APIKey)
				assert.False(t, cfg.Providers.Watsonx.Configured())
			},
		},
		{
			name: "providers and redis from env",
			envVars: map[string]string{
				"ANTHROPIC_API_KEY":     "sk-ant",
				"GOOGLE_GEMINI_API_KEY": "gm-key",
				"WATSONX_API_KEY":       "ibm-key",
				"WATSONX_PROJECT_ID":    "proj-1",
				"WATSONX_URL":           "https://eu-de.ml.cloud.ibm.com",
				"REDIS_URL":             "redis://localhost:6379/0",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sk-ant", cfg.Providers.Anthropic.APIKey)
				assert.Equal(t, "gm-key", cfg.Providers.Gemini.APIKey)
				assert.True(t, cfg.Providers.Watsonx.Configured())
				assert.Equal(t, "proj-1", cfg.Providers.Watsonx.ProjectID)
				assert.Equal(t, "https://eu-de.ml.cloud.ibm.com", cfg.Providers.Watsonx.BaseURL)
				assert.True(t, cfg.Redis.Enabled())
			},
		},
		{
			name: "custom timeouts, pool and origins",
			envVars: map[string]string{
				"SERVER_READ_TIMEOUT":  "60s",
				"SERVER_WRITE_TIMEOUT": "90s",
				"DB_MAX_OPEN_CONNS":    "50",
				"DB_MAX_IDLE_CONNS":    "10",
				"CORS_ALLOWED_ORIGINS": "https://app.example.com, ,https://admin.example.com",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 50, cfg.Database.MaxOpenConns)
				assert.Equal(t, 10, cfg.Database.MaxIdleConns)
				assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name:    "DATABASE_URL takes precedence",
			envVars: map[string]string{"DATABASE_URL": "postgres://u:p@db.internal:6543/genos?sslmode=require"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://u:p@db.internal:6543/genos?sslmode=require", cfg.Database.DSN())
				assert.Equal(t, "host=db.internal port=6543 database=genos", cfg.Database.LogString())
			},
		},
		{
			name:    "production without JWT secret",
			envVars: map[string]string{"ENVIRONMENT": "production"},
			wantErr: true,
		},
		{
			name:    "threshold out of range",
			envVars: map[string]string{"RAG_SIMILARITY_THRESHOLD": "1.5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Environment:   "development",
		Server:        ServerConfig{Port: 8080},
		Database:      DatabaseConfig{Host: "localhost", User: "genos", Database: "genos", MaxOpenConns: 5},
		RAG:           RAGConfig{TopK: 5, SimilarityThreshold: 0.3, IndexConcurrency: 1},
		RateLimit:     RateLimitConfig{Enabled: true, GenerationsPerHour: 10},
		Observability: ObservabilityConfig{LogLevel: "info"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no database", func(c *Config) { c.Database.Host = "" }, "database configuration required"},
		{"no db user", func(c *Config) { c.Database.User = "" }, "database user is required"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"zero top k", func(c *Config) { c.RAG.TopK = 0 }, "RAG_TOP_K"},
		{"negative threshold", func(c *Config) { c.RAG.SimilarityThreshold = -0.1 }, "RAG_SIMILARITY_THRESHOLD"},
		{"zero rate limit", func(c *Config) { c.RateLimit.GenerationsPerHour = 0 }, "RATE_LIMIT_GENERATIONS_PER_HOUR"},
		{"rate limit disabled ignores zero", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.GenerationsPerHour = 0
		}, ""},
		{"no log level", func(c *Config) { c.Observability.LogLevel = "" }, "log level is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Environment(t *testing.T) {
	assert.True(t, (&Config{Environment: "prod"}).IsProduction())
	assert.True(t, (&Config{Environment: "dev"}).IsDevelopment())
	assert.False(t, (&Config{Environment: "staging"}).IsProduction())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "genos", Password: "pw", Database: "genos", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=genos password=pw dbname=genos sslmode=disable", cfg.DSN())
	assert.NotContains(t, cfg.LogString(), "pw")
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_FLOAT", "0.75")
	t.Setenv("TEST_DURATION", "5m")
	t.Setenv("TEST_BAD_DURATION", "soon")

	assert.Equal(t, 42, getEnvAsInt("TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("TEST_BAD_INT", 1))
	assert.Equal(t, 7, getEnvAsInt("TEST_MISSING_INT", 7))
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	assert.Equal(t, 0.75, getEnvAsFloat("TEST_FLOAT", 0))
	assert.Equal(t, 5*time.Minute, getEnvAsDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("TEST_BAD_DURATION", time.Second))
}
