package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies token ledger movements.
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

// TokenBalance is an organization's remaining token allowance.
type TokenBalance struct {
	OrgID     uuid.UUID `json:"org_id" db:"org_id"`
	Balance   int64     `json:"balance" db:"balance"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the TokenBalance model
func (TokenBalance) TableName() string {
	return "token_balances"
}

// TokenTransaction is an append-only ledger row. ReferenceID points at the
// audit_log row that caused a debit.
type TokenTransaction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrgID        uuid.UUID       `json:"org_id" db:"org_id"`
	Type         TransactionType `json:"type" db:"type"`
	Amount       int64           `json:"amount" db:"amount"`
	BalanceAfter int64           `json:"balance_after" db:"balance_after"`
	ReferenceID  *uuid.UUID      `json:"reference_id,omitempty" db:"reference_id"`
	ThreadID     *uuid.UUID      `json:"thread_id,omitempty" db:"thread_id"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the TokenTransaction model
func (TokenTransaction) TableName() string {
	return "token_transactions"
}

// NewDebit creates a debit ledger entry for a generation.
func NewDebit(orgID uuid.UUID, amount int64, auditID, threadID uuid.UUID) *TokenTransaction {
	return &TokenTransaction{
		ID:          uuid.New(),
		OrgID:       orgID,
		Type:        TransactionTypeDebit,
		Amount:      amount,
		ReferenceID: &auditID,
		ThreadID:    &threadID,
		CreatedAt:   time.Now().UTC(),
	}
}

// DebitResult is reported back to the caller after a generation. Warning is
// set instead of BalanceAfter when the debit could not be applied.
type DebitResult struct {
	Debited      bool   `json:"debited"`
	Amount       int64  `json:"amount"`
	BalanceAfter *int64 `json:"balance_after,omitempty"`
	Warning      string `json:"warning,omitempty"`
}
