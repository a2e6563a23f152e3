package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"github.com/upb/genos-ai/services"
	"go.uber.org/zap"
)

// AuditEvent is an entry queued for background insertion
type AuditEvent struct {
	Log *models.AuditLog
}

// AuditService records audit entries. Generation entries are written
// synchronously because billing keys off them; operational events such as
// indexing runs go through a buffered worker pool.
type AuditService struct {
	auditRepo   repositories.AuditRepository
	logger      *zap.Logger
	eventChan   chan *AuditEvent
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the AuditService
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.Logger, config Config) *AuditService {
	ctx, cancel := context.WithCancel(context.Background())

	return &AuditService{
		auditRepo:   auditRepo,
		logger:      logger,
		eventChan:   make(chan *AuditEvent, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the background workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop drains pending events, waiting at most timeout
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))

	close(s.eventChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// GenerationEntry describes a successful generation to record
type GenerationEntry struct {
	OrgID     uuid.UUID
	UserID    uuid.UUID
	RequestID string
	Response  *models.GenerationResponse
	Details   models.GenerationAuditDetails
}

// RecordGeneration writes the ai_generate entry and returns it. It blocks
// until the row is stored; an error means nothing was billed.
func (s *AuditService) RecordGeneration(ctx context.Context, entry GenerationEntry) (*models.AuditLog, error) {
	log := models.NewAuditLog(entry.OrgID, models.AuditActionAIGenerate).
		WithUser(entry.UserID).
		WithRequest(entry.RequestID).
		WithDetails(entry.Details).
		WithGeneration(entry.Response.Model, entry.Response.TokensUsed, entry.Response.ThreadID)

	if err := s.auditRepo.Insert(ctx, log); err != nil {
		s.logger.Error("failed to record generation",
			zap.String("org_id", entry.OrgID.String()),
			zap.String("thread_id", entry.Response.ThreadID.String()),
			zap.Int("tokens_used", entry.Response.TokensUsed),
			zap.Error(err))
		return nil, services.WrapInternal("failed to record generation audit", err)
	}

	return log, nil
}

// LogIndexRun queues a rag_index entry (non-blocking)
func (s *AuditService) LogIndexRun(orgID, userID uuid.UUID, requestID string, details models.IndexAuditDetails) error {
	log := models.NewAuditLog(orgID, models.AuditActionRAGIndex).
		WithUser(userID).
		WithRequest(requestID).
		WithDetails(details)

	return s.LogEvent(&AuditEvent{Log: log})
}

// LogEvent queues an event for background insertion. Returns an error when
// the service is stopped or the buffer is full.
func (s *AuditService) LogEvent(event *AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("audit service not started")
	}

	select {
	case s.eventChan <- event:
		return nil
	default:
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(event.Log.Action)),
			zap.String("org_id", event.Log.OrganizationID.String()))
		return fmt.Errorf("audit event buffer full")
	}
}

func (s *AuditService) worker(id int) {
	defer s.wg.Done()

	for event := range s.eventChan {
		if err := s.processEvent(event); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Log.Action)),
				zap.String("org_id", event.Log.OrganizationID.String()))
		}
	}
}

func (s *AuditService) processEvent(event *AuditEvent) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	if err := s.auditRepo.Insert(ctx, event.Log); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// GetStats returns statistics about the audit service
func (s *AuditService) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started,
	}
}
