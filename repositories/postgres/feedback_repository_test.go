package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/genos-ai/models"
	"go.uber.org/zap"
)

var feedbackCols = []string{"id", "org_id", "user_id", "generation_id", "rating", "comment", "created_at"}

func TestFeedbackRepository_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedbackRepository(db, zap.NewNop())
	f := models.NewFeedback(uuid.New(), uuid.New(), uuid.New(), models.FeedbackPositive, "")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_feedback")).
		WithArgs(f.ID, f.OrgID, f.UserID, f.GenerationID, models.FeedbackPositive, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), f))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_InsertError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedbackRepository(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO ai_feedback").WillReturnError(errors.New("fk violation"))

	err := repo.Insert(context.Background(), models.NewFeedback(uuid.New(), uuid.New(), uuid.New(), models.FeedbackNegative, "meh"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert feedback")
}

func TestFeedbackRepository_ListByOrg(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedbackRepository(db, zap.NewNop())
	orgID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM ai_feedback")).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(orgID, 20, 40).
		WillReturnRows(sqlmock.NewRows(feedbackCols).
			AddRow(uuid.NewString(), orgID.String(), uuid.NewString(), uuid.NewString(), "negative", "too long", time.Now()).
			AddRow(uuid.NewString(), orgID.String(), uuid.NewString(), uuid.NewString(), "positive", nil, time.Now()))

	items, total, err := repo.ListByOrg(context.Background(), orgID, 20, 40)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, items, 2)
	assert.Equal(t, models.FeedbackNegative, items[0].Rating)
	require.NotNil(t, items[0].Comment)
	assert.Equal(t, "too long", *items[0].Comment)
	assert.Nil(t, items[1].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_ListByOrgCountError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFeedbackRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("timeout"))

	_, _, err := repo.ListByOrg(context.Background(), uuid.New(), 20, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count feedback")
}
