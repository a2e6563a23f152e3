package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/genos-ai/repositories"
)

type txKey struct{}

type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

type MockTransaction struct {
	mock.Mock
	ctx context.Context
}

func (m *MockTransaction) Commit() error {
	return m.Called().Error(0)
}

func (m *MockTransaction) Rollback() error {
	return m.Called().Error(0)
}

func (m *MockTransaction) Context() context.Context {
	return m.ctx
}

func newMockTx() *MockTransaction {
	return &MockTransaction{ctx: context.WithValue(context.Background(), txKey{}, "tx-1")}
}

func TestWithTransactionResult_Success(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	tx := newMockTx()
	txMgr.On("Begin", ctx).Return(tx, nil)
	tx.On("Commit").Return(nil)

	result, err := WithTransactionResult(ctx, txMgr, func(txCtx context.Context) (int64, error) {
		assert.Equal(t, "tx-1", txCtx.Value(txKey{}), "fn must receive the transaction context")
		return 42, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), result)
	tx.AssertExpectations(t)
}

func TestWithTransactionResult_ErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	tx := newMockTx()
	txMgr.On("Begin", ctx).Return(tx, nil)
	tx.On("Rollback").Return(nil)
	fnErr := errors.New("decrement failed")

	_, err := WithTransactionResult(ctx, txMgr, func(context.Context) (int64, error) {
		return 0, fnErr
	})

	assert.Equal(t, fnErr, err)
	tx.AssertNotCalled(t, "Commit")
}

func TestWithTransactionResult_RollbackError(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	tx := newMockTx()
	rbErr := errors.New("connection lost")
	txMgr.On("Begin", ctx).Return(tx, nil)
	tx.On("Rollback").Return(rbErr)

	_, err := WithTransactionResult(ctx, txMgr, func(context.Context) (string, error) {
		return "", errors.New("boom")
	})

	assert.ErrorIs(t, err, rbErr)
	assert.Contains(t, err.Error(), "boom")
}

func TestWithTransactionResult_BeginError(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	txMgr.On("Begin", ctx).Return(nil, errors.New("pool exhausted"))

	called := false
	_, err := WithTransactionResult(ctx, txMgr, func(context.Context) (int, error) {
		called = true
		return 0, nil
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.False(t, called)
}

func TestWithTransactionResult_CommitError(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	tx := newMockTx()
	txMgr.On("Begin", ctx).Return(tx, nil)
	tx.On("Commit").Return(errors.New("serialization failure"))

	_, err := WithTransactionResult(ctx, txMgr, func(context.Context) (int, error) {
		return 1, nil
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}

func TestWithTransactionResult_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	tx := newMockTx()
	txMgr.On("Begin", ctx).Return(tx, nil)
	tx.On("Rollback").Return(nil)

	assert.Panics(t, func() {
		_, _ = WithTransactionResult(ctx, txMgr, func(context.Context) (int, error) {
			panic("unexpected")
		})
	})
	tx.AssertCalled(t, "Rollback")
}
