package postgres

import (
	"github.com/upb/genos-ai/config"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory opens the database and creates a factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return &RepositoryFactory{db: db, logger: logger}, nil
}

// NewRepositoryFactoryFromDB creates a factory over an open pool
func NewRepositoryFactoryFromDB(db *DB, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{db: db, logger: logger}
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Brands:       NewBrandRepository(f.db, f.logger),
		ContentItems: NewContentItemRepository(f.db, f.logger),
		Embeddings:   NewEmbeddingRepository(f.db, f.logger),
		Audit:        NewAuditRepository(f.db, f.logger),
		TokenLedger:  NewTokenLedgerRepository(f.db, f.logger),
		Feedback:     NewFeedbackRepository(f.db, f.logger),
		TxManager:    NewTransactionManager(f.db, f.logger),
	}
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}
