package billing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"github.com/upb/genos-ai/services"
	"go.uber.org/zap"
)

// Warnings returned in place of a balance when a debit is not applied
const (
	WarningNoBalance   = "organization has no token balance; usage recorded in audit log only"
	WarningDebitFailed = "token debit failed; usage recorded in audit log only"
)

// BillingService debits generation usage from organization token balances
type BillingService struct {
	ledger repositories.TokenLedgerRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewBillingService creates a new BillingService instance
func NewBillingService(ledger repositories.TokenLedgerRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *BillingService {
	return &BillingService{
		ledger: ledger,
		txMgr:  txMgr,
		logger: logger,
	}
}

// Debit decrements the balance and appends the ledger row in one
// transaction. It never fails the caller: problems are logged and reported
// as a warning on the result.
func (s *BillingService) Debit(ctx context.Context, orgID uuid.UUID, amount int64, auditID, threadID uuid.UUID) *models.DebitResult {
	if amount <= 0 {
		return &models.DebitResult{Amount: 0}
	}

	balance, err := services.WithTransactionResult(ctx, s.txMgr, func(txCtx context.Context) (int64, error) {
		after, err := s.ledger.Decrement(txCtx, orgID, amount)
		if err != nil {
			return 0, err
		}

		entry := models.NewDebit(orgID, amount, auditID, threadID)
		entry.BalanceAfter = after
		if err := s.ledger.InsertTransaction(txCtx, entry); err != nil {
			return 0, err
		}
		return after, nil
	})
	if err != nil {
		warning := WarningDebitFailed
		if errors.Is(err, sql.ErrNoRows) {
			warning = WarningNoBalance
		}
		s.logger.Warn("token debit not applied",
			zap.String("org_id", orgID.String()),
			zap.String("audit_id", auditID.String()),
			zap.Int64("amount", amount),
			zap.Error(err))
		return &models.DebitResult{Amount: amount, Warning: warning}
	}

	if balance < 0 {
		s.logger.Warn("organization token balance is negative",
			zap.String("org_id", orgID.String()),
			zap.Int64("balance", balance))
	}

	return &models.DebitResult{Debited: true, Amount: amount, BalanceAfter: &balance}
}

// Balance returns the organization's current token balance
func (s *BillingService) Balance(ctx context.Context, orgID uuid.UUID) (*models.TokenBalance, error) {
	balance, err := s.ledger.GetBalance(ctx, orgID)
	if err != nil {
		return nil, services.WrapInternal("failed to load token balance", err)
	}
	if balance == nil {
		return nil, services.ErrBalanceNotFound
	}
	return balance, nil
}
