package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/genos-ai/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{DB: db, logger: logger}, nil
}

// WrapDB wraps an existing connection pool, e.g. one opened by sqlmock.
func WrapDB(db *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// schema is idempotent. content_embeddings requires the pgvector extension;
// the vector width matches ibm/granite-embedding-125m-english.
const schema = `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS brands (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		brand_voice TEXT,
		target_audience TEXT,
		industry VARCHAR(255),
		content_pillars TEXT[],
		forbidden_words TEXT,
		mandatory_elements TEXT,
		regional_expertise JSONB,
		target_language VARCHAR(16),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS content_items (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL,
		brand_id UUID REFERENCES brands(id) ON DELETE SET NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		type VARCHAR(50) NOT NULL,
		platform TEXT[],
		status VARCHAR(50) NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS content_embeddings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		org_id UUID NOT NULL,
		source_id TEXT NOT NULL,
		source_type VARCHAR(50) NOT NULL,
		content_text TEXT NOT NULL,
		embedding vector(768) NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (org_id, source_id, source_type)
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL,
		user_id UUID,
		action VARCHAR(100) NOT NULL,
		details JSONB NOT NULL DEFAULT '{}',
		ai_model VARCHAR(100),
		tokens_used INTEGER,
		thread_id UUID,
		request_id VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS token_balances (
		org_id UUID PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS token_transactions (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL,
		type VARCHAR(20) NOT NULL,
		amount BIGINT NOT NULL,
		balance_after BIGINT NOT NULL,
		reference_id UUID,
		thread_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS ai_feedback (
		id UUID PRIMARY KEY,
		org_id UUID NOT NULL,
		user_id UUID NOT NULL,
		generation_id UUID NOT NULL,
		rating VARCHAR(10) NOT NULL CHECK (rating IN ('positive', 'negative')),
		comment TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE OR REPLACE FUNCTION match_content_embeddings(
		query_embedding vector(768),
		match_org_id UUID,
		match_threshold FLOAT,
		match_count INT,
		filter_source_types TEXT[] DEFAULT NULL
	) RETURNS TABLE (source_id TEXT, content_text TEXT, source_type VARCHAR, similarity FLOAT)
	LANGUAGE sql STABLE AS $$
		SELECT ce.source_id, ce.content_text, ce.source_type,
		       1 - (ce.embedding <=> query_embedding) AS similarity
		FROM content_embeddings ce
		WHERE ce.org_id = match_org_id
		  AND (filter_source_types IS NULL OR ce.source_type = ANY(filter_source_types))
		  AND 1 - (ce.embedding <=> query_embedding) >= match_threshold
		ORDER BY ce.embedding <=> query_embedding
		LIMIT match_count
	$$;

	CREATE INDEX IF NOT EXISTS idx_brands_org ON brands(organization_id);
	CREATE INDEX IF NOT EXISTS idx_content_items_org_status ON content_items(org_id, status);
	CREATE INDEX IF NOT EXISTS idx_content_embeddings_org ON content_embeddings(org_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_org_user_action ON audit_log(organization_id, user_id, action, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_log_thread ON audit_log(thread_id);
	CREATE INDEX IF NOT EXISTS idx_token_transactions_org ON token_transactions(org_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_ai_feedback_org ON ai_feedback(org_id, created_at DESC);
`

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}
