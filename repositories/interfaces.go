package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction. The returned transaction's Context
	// carries it, so repositories called with that context join it.
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error

	// Context returns a context bound to the transaction
	Context() context.Context
}

// BrandRepository reads brand identities.
type BrandRepository interface {
	// GetForOrg loads a brand by id, filtered by organization in the same
	// query. Returns (nil, nil) when no row matches.
	GetForOrg(ctx context.Context, brandID, orgID uuid.UUID) (*models.Brand, error)

	// ListByOrg lists the organization's brands, optionally a single one.
	ListByOrg(ctx context.Context, orgID uuid.UUID, brandID *uuid.UUID) ([]*models.Brand, error)
}

// ContentItemRepository reads historical content for indexing.
type ContentItemRepository interface {
	// ListIndexable returns up to limit items with the given statuses.
	ListIndexable(ctx context.Context, orgID uuid.UUID, statuses []models.ContentStatus, limit int) ([]*models.ContentItem, error)
}

// EmbeddingRepository stores and searches content embeddings.
type EmbeddingRepository interface {
	// Upsert writes rows keyed by (org_id, source_id, source_type), replacing
	// existing vectors and text.
	Upsert(ctx context.Context, rows []*models.ContentEmbedding) error

	// Match runs the tenant-scoped similarity search.
	Match(ctx context.Context, q models.MatchQuery) ([]models.EmbeddingMatch, error)
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// ListByAction lists entries for an organization and user, newest first,
	// and returns the total count ignoring pagination.
	ListByAction(ctx context.Context, orgID, userID uuid.UUID, action models.AuditAction, limit, offset int) ([]*models.AuditLog, int, error)
}

// TokenLedgerRepository maintains token balances and their ledger.
type TokenLedgerRepository interface {
	// Decrement subtracts amount from the balance and returns the new value.
	// Returns an error wrapping sql.ErrNoRows when the org has no balance row.
	Decrement(ctx context.Context, orgID uuid.UUID, amount int64) (int64, error)

	// InsertTransaction appends a ledger entry
	InsertTransaction(ctx context.Context, tx *models.TokenTransaction) error

	// GetBalance returns the current balance
	GetBalance(ctx context.Context, orgID uuid.UUID) (*models.TokenBalance, error)
}

// FeedbackRepository stores ratings left on generations.
type FeedbackRepository interface {
	Insert(ctx context.Context, f *models.Feedback) error

	// ListByOrg lists the organization's feedback, newest first, and returns
	// the total count ignoring pagination.
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Feedback, int, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Brands       BrandRepository
	ContentItems ContentItemRepository
	Embeddings   EmbeddingRepository
	Audit        AuditRepository
	TokenLedger  TokenLedgerRepository
	Feedback     FeedbackRepository
	TxManager    TransactionManager
}
