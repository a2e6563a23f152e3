package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
	"go.uber.org/zap"
)

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
	mu           sync.Mutex
	insertedLogs []*models.AuditLog
}

func (m *MockAuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.insertedLogs = append(m.insertedLogs, log)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *MockAuditRepository) ListByAction(ctx context.Context, orgID, userID uuid.UUID, action models.AuditAction, limit, offset int) ([]*models.AuditLog, int, error) {
	args := m.Called(ctx, orgID, userID, action, limit, offset)
	var logs []*models.AuditLog
	if l := args.Get(0); l != nil {
		logs = l.([]*models.AuditLog)
	}
	return logs, args.Int(1), args.Error(2)
}

func (m *MockAuditRepository) GetInsertedLogs() []*models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.AuditLog(nil), m.insertedLogs...)
}

func TestAuditService_StartStop(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := NewAuditService(mockRepo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 2})

	require.NoError(t, service.Start())

	stats := service.GetStats()
	assert.True(t, stats.Started)
	assert.Equal(t, 2, stats.WorkerCount)
	assert.Equal(t, 10, stats.BufferSize)

	// Cannot start again
	assert.Error(t, service.Start())

	require.NoError(t, service.Stop(5*time.Second))
	assert.Error(t, service.Stop(time.Second))
}

func TestAuditService_RecordGeneration(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := NewAuditService(mockRepo, zap.NewNop(), DefaultConfig())
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	orgID, userID, brandID, threadID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	resp := &models.GenerationResponse{
		Content: "texto", Model: "claude-sonnet-4-6", ThreadID: threadID, TokensUsed: 321,
	}

	log, err := service.RecordGeneration(context.Background(), GenerationEntry{
		OrgID:     orgID,
		UserID:    userID,
		RequestID: "req-1",
		Response:  resp,
		Details: models.GenerationAuditDetails{
			ContentType:  models.ContentTypePost,
			Platform:     "instagram",
			BrandID:      brandID,
			PromptLength: 42,
			Provider:     models.ProviderClaude,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.AuditActionAIGenerate, log.Action)
	assert.Equal(t, orgID, log.OrganizationID)
	assert.Equal(t, userID, *log.UserID)
	assert.Equal(t, "claude-sonnet-4-6", *log.AIModel)
	assert.Equal(t, 321, *log.TokensUsed)
	assert.Equal(t, threadID, *log.ThreadID)
	assert.Equal(t, "req-1", log.RequestID)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "post", details["content_type"])
	assert.Equal(t, brandID.String(), details["brand_id"])
	assert.Equal(t, float64(42), details["prompt_length"])
	assert.NotContains(t, details, "fallback_provider")

	// written synchronously, without Start
	assert.Len(t, mockRepo.GetInsertedLogs(), 1)
}

func TestAuditService_RecordGeneration_Failure(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := NewAuditService(mockRepo, zap.NewNop(), DefaultConfig())
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	log, err := service.RecordGeneration(context.Background(), GenerationEntry{
		OrgID:    uuid.New(),
		Response: &models.GenerationResponse{ThreadID: uuid.New()},
	})
	assert.Nil(t, log)
	assert.True(t, services.IsInternalError(err))
}

func TestAuditService_LogIndexRun(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := NewAuditService(mockRepo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})
	require.NoError(t, service.Start())

	done := make(chan struct{})
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		close(done)
	}).Once()

	orgID := uuid.New()
	require.NoError(t, service.LogIndexRun(orgID, uuid.New(), "req-9", models.IndexAuditDetails{Type: "all", Indexed: 7}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("index event was not processed")
	}
	require.NoError(t, service.Stop(5*time.Second))

	logs := mockRepo.GetInsertedLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionRAGIndex, logs[0].Action)
	assert.Equal(t, orgID, logs[0].OrganizationID)
	assert.JSONEq(t, `{"type":"all","indexed":7}`, string(logs[0].Details))
}

func TestAuditService_LogEventNotStarted(t *testing.T) {
	service := NewAuditService(new(MockAuditRepository), zap.NewNop(), DefaultConfig())
	err := service.LogIndexRun(uuid.New(), uuid.Nil, "", models.IndexAuditDetails{})
	assert.Error(t, err)
}

func TestAuditService_BufferFull(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := NewAuditService(mockRepo, zap.NewNop(), Config{BufferSize: 2, WorkerCount: 1})
	require.NoError(t, service.Start())

	release := make(chan struct{})
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		<-release
	})

	successCount := 0
	for i := 0; i < 10; i++ {
		if service.LogEvent(&AuditEvent{Log: models.NewAuditLog(uuid.New(), models.AuditActionRAGIndex)}) == nil {
			successCount++
		}
	}

	// one in flight plus two buffered at most
	assert.LessOrEqual(t, successCount, 3)
	close(release)
	require.NoError(t, service.Stop(5*time.Second))
}

func TestAuditService_StopTimeout(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := NewAuditService(mockRepo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})
	require.NoError(t, service.Start())

	release := make(chan struct{})
	defer close(release)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		<-release
	})

	require.NoError(t, service.LogEvent(&AuditEvent{Log: models.NewAuditLog(uuid.New(), models.AuditActionRAGIndex)}))

	err := service.Stop(50 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestAuditService_History(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()
	ctx := context.Background()

	tests := []struct {
		name               string
		limit, offset      int
		wantLimit, wantOff int
	}{
		{"defaults", 0, 0, 20, 0},
		{"capped", 500, 10, 100, 10},
		{"negative offset", 5, -3, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAuditRepository)
			service := NewAuditService(mockRepo, zap.NewNop(), DefaultConfig())
			mockRepo.On("ListByAction", ctx, orgID, userID, models.AuditActionAIGenerate, tt.wantLimit, tt.wantOff).
				Return(nil, 0, nil)

			page, err := service.History(ctx, orgID, userID, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Equal(t, tt.wantOff, page.Offset)
			assert.NotNil(t, page.Data)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuditService_HistoryError(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := NewAuditService(mockRepo, zap.NewNop(), DefaultConfig())
	mockRepo.On("ListByAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0, errors.New("timeout"))

	_, err := service.History(context.Background(), uuid.New(), uuid.New(), 10, 0)
	assert.True(t, services.IsInternalError(err))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 1000, config.BufferSize)
	assert.Equal(t, 2, config.WorkerCount)
}
