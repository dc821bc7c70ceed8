package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

func TestComputeBreakdown_MCQOnly(t *testing.T) {
	// Two 1-point MCQ questions, one answered correctly.
	questions := map[uint]*entity.Question{
		1: {ID: 1, Type: entity.QuestionTypeMCQ, Points: 1},
		2: {ID: 2, Type: entity.QuestionTypeMCQ, Points: 1},
	}
	responses := []entity.Response{
		{QuestionID: 1, Score: 1},
		{QuestionID: 2, Score: 0},
	}

	b := ComputeBreakdown(responses, questions)

	assert.True(t, b.MCQPresent)
	assert.False(t, b.SubjectivePresent)
	assert.False(t, b.VoicePresent)
	assert.InDelta(t, 50.0, b.MCQPercent, 0.001)
	// Absent categories keep their weight off the composite: 50% of the
	// 40-point MCQ weight only.
	assert.InDelta(t, 20.0, b.Composite, 0.001)
}

func TestComputeBreakdown_AllCategoriesPresent(t *testing.T) {
	questions := map[uint]*entity.Question{
		1: {ID: 1, Type: entity.QuestionTypeMCQ, Points: 1},
		2: {ID: 2, Type: entity.QuestionTypeMCQ, Points: 1},
		3: {ID: 3, Type: entity.QuestionTypeSubjective, Points: 5},
		4: {ID: 4, Type: entity.QuestionTypeVoice, Points: 5},
	}
	responses := []entity.Response{
		{QuestionID: 1, Score: 1},
		{QuestionID: 2, Score: 1},
		{QuestionID: 3, Score: 4},  // 80%
		{QuestionID: 4, Score: 2.5}, // 50%
	}

	b := ComputeBreakdown(responses, questions)

	assert.InDelta(t, 100.0, b.MCQPercent, 0.001)
	assert.InDelta(t, 80.0, b.SubjectivePercent, 0.001)
	assert.InDelta(t, 50.0, b.VoicePercent, 0.001)
	// 100*0.40 + 80*0.35 + 50*0.25 = 40 + 28 + 12.5
	assert.InDelta(t, 80.5, b.Composite, 0.001)
}

func TestComputeBreakdown_NoRenormalizationForMissingCategory(t *testing.T) {
	// Perfect MCQ and subjective scores without a voice category must top out
	// at 75, not be scaled back up to 100.
	questions := map[uint]*entity.Question{
		1: {ID: 1, Type: entity.QuestionTypeMCQ, Points: 2},
		2: {ID: 2, Type: entity.QuestionTypeSubjective, Points: 5},
	}
	responses := []entity.Response{
		{QuestionID: 1, Score: 2},
		{QuestionID: 2, Score: 5},
	}

	b := ComputeBreakdown(responses, questions)

	assert.InDelta(t, 100.0, b.MCQPercent, 0.001)
	assert.InDelta(t, 100.0, b.SubjectivePercent, 0.001)
	assert.False(t, b.VoicePresent)
	assert.InDelta(t, 75.0, b.Composite, 0.001)
}

func TestComputeBreakdown_EmptyResponses(t *testing.T) {
	b := ComputeBreakdown(nil, map[uint]*entity.Question{})

	assert.False(t, b.MCQPresent)
	assert.False(t, b.SubjectivePresent)
	assert.False(t, b.VoicePresent)
	assert.Zero(t, b.Composite)
}

func TestComputeBreakdown_SkipsResponsesWithUnknownQuestion(t *testing.T) {
	questions := map[uint]*entity.Question{
		1: {ID: 1, Type: entity.QuestionTypeMCQ, Points: 1},
	}
	responses := []entity.Response{
		{QuestionID: 1, Score: 1},
		{QuestionID: 99, Score: 5}, // question deleted after the answer was recorded
	}

	b := ComputeBreakdown(responses, questions)

	assert.InDelta(t, 100.0, b.MCQPercent, 0.001)
	assert.InDelta(t, 40.0, b.Composite, 0.001)
}

func TestFeedbackOrFallback(t *testing.T) {
	assert.Equal(t, "Great work on the MCQ round.", feedbackOrFallback("Great work on the MCQ round.", nil))
	// Provider failures and empty output both fall back to the fixed text.
	assert.Equal(t, fallbackFeedbackText, feedbackOrFallback("", nil))
	assert.Equal(t, fallbackFeedbackText, feedbackOrFallback("partial", errProvider))
}

var errProvider = errors.New("provider unavailable")

func createTestScoreServiceWithMocks() (*ScoreService, *MockSessionRepository, *MockResponseRepository, *MockQuestionRepository, *MockAssessmentRepository, *MockUserRepository, *MockAIProvider, *MockEmailService) {
	sessionRepo := new(MockSessionRepository)
	responseRepo := new(MockResponseRepository)
	questionRepo := new(MockQuestionRepository)
	assessmentRepo := new(MockAssessmentRepository)
	userRepo := new(MockUserRepository)
	aiProvider := new(MockAIProvider)
	emailService := new(MockEmailService)

	svc := &ScoreService{
		sessionRepo:    sessionRepo,
		responseRepo:   responseRepo,
		questionRepo:   questionRepo,
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
		db:             nil, // transaction paths are not exercised in unit tests
		aiProvider:     aiProvider,
		emailService:   emailService,
	}
	return svc, sessionRepo, responseRepo, questionRepo, assessmentRepo, userRepo, aiProvider, emailService
}

func TestCompleteSession_ForbiddenForOtherUser(t *testing.T) {
	svc, sessionRepo, _, _, _, _, aiProvider, _ := createTestScoreServiceWithMocks()

	session := &entity.Session{ID: 10, UserID: 1, AssessmentID: 5, Status: entity.SessionStatusInProgress}
	sessionRepo.On("GetByID", uint(10)).Return(session, nil)

	result, err := svc.CompleteSession(context.Background(), 10, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Nil(t, result)
	aiProvider.AssertNotCalled(t, "GenerateFinalFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteSession_AlreadyCompleted(t *testing.T) {
	svc, sessionRepo, _, _, _, _, _, _ := createTestScoreServiceWithMocks()

	session := &entity.Session{ID: 10, UserID: 1, AssessmentID: 5, Status: entity.SessionStatusCompleted}
	sessionRepo.On("GetByID", uint(10)).Return(session, nil)

	result, err := svc.CompleteSession(context.Background(), 10, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, result)
}

func TestCompleteSession_SessionNotFound(t *testing.T) {
	svc, sessionRepo, _, _, _, _, _, _ := createTestScoreServiceWithMocks()

	sessionRepo.On("GetByID", uint(404)).Return(nil, apperrors.ErrNotFound)

	result, err := svc.CompleteSession(context.Background(), 404, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, result)
}

// createTestScoreServiceWithDB backs the service with a sqlmock database so
// the completion transaction itself can run.
func createTestScoreServiceWithDB(t *testing.T) (*ScoreService, sqlmock.Sqlmock, *MockSessionRepository, *MockResponseRepository, *MockQuestionRepository, *MockAssessmentRepository, *MockUserRepository, *MockAIProvider, *MockEmailService) {
	t.Helper()

	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sessionRepo := new(MockSessionRepository)
	responseRepo := new(MockResponseRepository)
	questionRepo := new(MockQuestionRepository)
	assessmentRepo := new(MockAssessmentRepository)
	userRepo := new(MockUserRepository)
	aiProvider := new(MockAIProvider)
	emailService := new(MockEmailService)

	svc := NewScoreService(sessionRepo, responseRepo, questionRepo, assessmentRepo, userRepo, gdb, aiProvider, emailService)
	return svc, dbMock, sessionRepo, responseRepo, questionRepo, assessmentRepo, userRepo, aiProvider, emailService
}

func TestCompleteSession_FeedbackFailureStillCompletes(t *testing.T) {
	svc, dbMock, sessionRepo, responseRepo, questionRepo, assessmentRepo, userRepo, aiProvider, emailService := createTestScoreServiceWithDB(t)

	session := &entity.Session{ID: 10, UserID: 1, AssessmentID: 3, Status: entity.SessionStatusInProgress}
	sessionRepo.On("GetByID", uint(10)).Return(session, nil)
	assessmentRepo.On("GetByID", uint(3)).Return(&entity.Assessment{ID: 3, Title: "Backend Engineering"}, nil)

	// 2 MCQ at 1 point (one correct) and a subjective at 3.5 of 5: the
	// category percentages are 50 and 70, the composite 20 + 24.5 = 44.5.
	responseRepo.On("GetBySessionID", uint(10)).Return([]entity.Response{
		{QuestionID: 1, Score: 1},
		{QuestionID: 2, Score: 0},
		{QuestionID: 3, Score: 3.5},
	}, nil)
	questionRepo.On("GetByAssessmentID", uint(3)).Return([]entity.Question{
		{ID: 1, Type: entity.QuestionTypeMCQ, Points: 1},
		{ID: 2, Type: entity.QuestionTypeMCQ, Points: 1},
		{ID: 3, Type: entity.QuestionTypeSubjective, Points: 5},
	}, nil)

	// A provider outage at feedback time must not block completion.
	aiProvider.On("GenerateFinalFeedback", mock.Anything, "Backend Engineering", 50.0, 70.0, 0.0).
		Return("", errProvider)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE "assessment_sessions" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	userRepo.On("GetByID", uint(1)).Return(&entity.User{ID: 1, Email: "dana@example.com"}, nil)
	emailService.On("SendCompletionSummary", mock.Anything, "dana@example.com", "Backend Engineering", mock.Anything, "session-completed-10").
		Return(nil)

	result, err := svc.CompleteSession(context.Background(), 10, 1)

	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusCompleted, result.Status)
	assert.Equal(t, fallbackFeedbackText, result.Feedback)
	require.NotNil(t, result.TotalScore)
	assert.InDelta(t, 44.5, *result.TotalScore, 0.001)
	require.NotNil(t, result.MCQScore)
	assert.InDelta(t, 50.0, *result.MCQScore, 0.001)
	require.NotNil(t, result.SubjectiveScore)
	assert.InDelta(t, 70.0, *result.SubjectiveScore, 0.001)
	require.NotNil(t, result.VoiceScore)
	assert.Zero(t, *result.VoiceScore)
	require.NotNil(t, result.CompletedAt)

	assert.NoError(t, dbMock.ExpectationsWereMet())
	emailService.AssertExpectations(t)
}

func TestCompleteSession_ConcurrentCompleteLosesOnGuard(t *testing.T) {
	svc, dbMock, sessionRepo, responseRepo, questionRepo, assessmentRepo, _, aiProvider, emailService := createTestScoreServiceWithDB(t)

	// The row read as in_progress flips to completed before the update; the
	// guarded transition touches no rows and the call reports the conflict.
	session := &entity.Session{ID: 10, UserID: 1, AssessmentID: 3, Status: entity.SessionStatusInProgress}
	sessionRepo.On("GetByID", uint(10)).Return(session, nil)
	assessmentRepo.On("GetByID", uint(3)).Return(&entity.Assessment{ID: 3, Title: "Backend Engineering"}, nil)
	responseRepo.On("GetBySessionID", uint(10)).Return([]entity.Response{}, nil)
	questionRepo.On("GetByAssessmentID", uint(3)).Return([]entity.Question{}, nil)
	aiProvider.On("GenerateFinalFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("Great effort.", nil)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE "assessment_sessions" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectRollback()

	result, err := svc.CompleteSession(context.Background(), 10, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, result)
	assert.NoError(t, dbMock.ExpectationsWereMet())
	emailService.AssertNotCalled(t, "SendCompletionSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
