package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

// TokenLedgerRepository implements repositories.TokenLedgerRepository
type TokenLedgerRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTokenLedgerRepository creates a new token ledger repository
func NewTokenLedgerRepository(db *DB, logger *zap.Logger) repositories.TokenLedgerRepository {
	return &TokenLedgerRepository{db: db, logger: logger}
}

// Decrement subtracts amount from the org balance. The balance may go negative;
// enforcing a floor is a product decision made before generation, not here.
func (r *TokenLedgerRepository) Decrement(ctx context.Context, orgID uuid.UUID, amount int64) (int64, error) {
	query := `
		UPDATE token_balances
		SET balance = balance - $2, updated_at = now()
		WHERE org_id = $1
		RETURNING balance
	`

	var balance int64
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, amount).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to decrement token balance: %w", err)
	}
	return balance, nil
}

// InsertTransaction appends a ledger row
func (r *TokenLedgerRepository) InsertTransaction(ctx context.Context, tx *models.TokenTransaction) error {
	query := `
		INSERT INTO token_transactions (id, org_id, type, amount, balance_after, reference_id, thread_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		tx.ID, tx.OrgID, tx.Type, tx.Amount, tx.BalanceAfter, tx.ReferenceID, tx.ThreadID, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert token transaction: %w", err)
	}
	return nil
}

// GetBalance returns the org balance, or (nil, nil) when none exists
func (r *TokenLedgerRepository) GetBalance(ctx context.Context, orgID uuid.UUID) (*models.TokenBalance, error) {
	query := `SELECT org_id, balance, updated_at FROM token_balances WHERE org_id = $1`

	b := &models.TokenBalance{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID).Scan(&b.OrgID, &b.Balance, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}
	return b, nil
}
