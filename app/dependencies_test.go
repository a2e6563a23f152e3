package app

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/genos-ai/config"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories/postgres"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: config.DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "genos",
			Database:     "genos_test",
			SSLMode:      "disable",
			MaxOpenConns: 5,
		},
		Auth: config.AuthConfig{JWTSecret: "test-secret"},
		RAG: config.RAGConfig{
			Enabled:             true,
			TopK:                5,
			SimilarityThreshold: 0.3,
			IndexConcurrency:    2,
			ContentItemLimit:    200,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:            true,
			GenerationsPerHour: 100,
			LocalBurst:         10,
		},
		Observability: config.ObservabilityConfig{LogLevel: "debug", LogFormat: "json"},
	}
}

func mockFactory(t *testing.T, logger *zap.Logger) (*postgres.RepositoryFactory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return postgres.NewRepositoryFactoryFromDB(postgres.WrapDB(db, logger), logger), mock
}

func TestNewDependenciesFromDB(t *testing.T) {
	ctx := context.Background()

	t.Run("wires every component", func(t *testing.T) {
		logger := zaptest.NewLogger(t)
		factory, mock := mockFactory(t, logger)
		mock.ExpectClose()

		deps, err := NewDependenciesFromDB(ctx, testConfig(), factory, logger)
		require.NoError(t, err)

		assert.NotNil(t, deps.DB)
		assert.NotNil(t, deps.Repos.Brands)
		assert.NotNil(t, deps.Repos.TxManager)
		assert.Equal(t, []models.Provider{models.ProviderClaude, models.ProviderGemini, models.ProviderGranite}, deps.Providers.Names())
		assert.NotNil(t, deps.Routing)
		assert.NotNil(t, deps.Generation)
		assert.NotNil(t, deps.Index)
		assert.NotNil(t, deps.Feedback)
		assert.NotNil(t, deps.Repos.Feedback)
		assert.NotNil(t, deps.RateLimit)
		assert.NotNil(t, deps.AuthMiddleware)
		assert.Nil(t, deps.Redis)

		require.NoError(t, deps.Close(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retriever requires watsonx", func(t *testing.T) {
		logger := zap.NewNop()

		factory, _ := mockFactory(t, logger)
		deps, err := NewDependenciesFromDB(ctx, testConfig(), factory, logger)
		require.NoError(t, err)
		assert.Nil(t, deps.Retriever)

		cfg := testConfig()
		cfg.Providers.Watsonx = config.WatsonxConfig{APIKey: "key", ProjectID: "project"}
		factory, _ = mockFactory(t, logger)
		deps, err = NewDependenciesFromDB(ctx, cfg, factory, logger)
		require.NoError(t, err)
		assert.NotNil(t, deps.Retriever)

		cfg.RAG.Enabled = false
		factory, _ = mockFactory(t, logger)
		deps, err = NewDependenciesFromDB(ctx, cfg, factory, logger)
		require.NoError(t, err)
		assert.Nil(t, deps.Retriever)
	})

	t.Run("rate limit disabled", func(t *testing.T) {
		logger := zap.NewNop()
		factory, _ := mockFactory(t, logger)
		cfg := testConfig()
		cfg.RateLimit.Enabled = false

		deps, err := NewDependenciesFromDB(ctx, cfg, factory, logger)
		require.NoError(t, err)
		assert.Nil(t, deps.RateLimit)
	})

	t.Run("redis counter and readiness check", func(t *testing.T) {
		logger := zap.NewNop()
		factory, _ := mockFactory(t, logger)
		cfg := testConfig()
		cfg.Redis.URL = "redis://localhost:6379/0"

		deps, err := NewDependenciesFromDB(ctx, cfg, factory, logger)
		require.NoError(t, err)
		require.NotNil(t, deps.Redis)

		checks := deps.HealthChecks()
		assert.Contains(t, checks, "database")
		assert.Contains(t, checks, "redis")
	})

	t.Run("invalid redis url", func(t *testing.T) {
		logger := zap.NewNop()
		factory, _ := mockFactory(t, logger)
		cfg := testConfig()
		cfg.Redis.URL = "localhost:6379"

		deps, err := NewDependenciesFromDB(ctx, cfg, factory, logger)
		assert.Nil(t, deps)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize rate limiter")
	})

	t.Run("schema initialization", func(t *testing.T) {
		logger := zap.NewNop()
		factory, mock := mockFactory(t, logger)
		mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").WillReturnResult(sqlmock.NewResult(0, 0))
		cfg := testConfig()
		cfg.Database.InitSchema = true

		_, err := NewDependenciesFromDB(ctx, cfg, factory, logger)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDependencies_StartAndClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zaptest.NewLogger(t)
	factory, mock := mockFactory(t, logger)
	mock.ExpectClose()

	deps, err := NewDependenciesFromDB(ctx, testConfig(), factory, logger)
	require.NoError(t, err)

	require.NoError(t, deps.Start(ctx))
	assert.True(t, deps.Audit.GetStats().Started)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer closeCancel()
	assert.NoError(t, deps.Close(closeCtx))
}
