package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/assessment-api/internal/ai"
	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// ============================================================================
// Shared mocks for the service tests.
// ============================================================================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) Create(assessment *entity.Assessment) error {
	args := m.Called(assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetByID(id uint) (*entity.Assessment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) GetWithQuestions(id uint) (*entity.Assessment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) ListActive() ([]entity.Assessment, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) List(limit, offset int) ([]entity.Assessment, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Assessment), args.Get(1).(int64), args.Error(2)
}

func (m *MockAssessmentRepository) Update(assessment *entity.Assessment) error {
	args := m.Called(assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) UpdateTotalQuestions(assessmentID uint, total int) error {
	args := m.Called(assessmentID, total)
	return args.Error(0)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByAssessmentID(assessmentID uint) ([]entity.Question, error) {
	args := m.Called(assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByAssessmentID(assessmentID uint) (int64, error) {
	args := m.Called(assessmentID)
	return args.Get(0).(int64), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(session *entity.Session) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(id uint) (*entity.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepository) GetActiveByUserAndAssessment(userID, assessmentID uint) (*entity.Session, error) {
	args := m.Called(userID, assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateProgress(sessionID uint, currentQuestionIndex, timeRemaining int, status string) error {
	args := m.Called(sessionID, currentQuestionIndex, timeRemaining, status)
	return args.Error(0)
}

func (m *MockSessionRepository) ListByUser(userID uint) ([]entity.Session, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Session), args.Error(1)
}

func (m *MockSessionRepository) CountByStatus(status string) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) CountCompletedBetween(from, to time.Time) (int64, error) {
	args := m.Called(from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) ListCompletedByAssessment(assessmentID uint) ([]entity.Session, error) {
	args := m.Called(assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Session), args.Error(1)
}

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(response *entity.Response) error {
	args := m.Called(response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetBySessionID(sessionID uint) ([]entity.Response, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Response), args.Error(1)
}

func (m *MockResponseRepository) GetBySessionAndQuestion(sessionID, questionID uint) (*entity.Response, error) {
	args := m.Called(sessionID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Response), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

type MockAIProvider struct {
	mock.Mock
}

func (m *MockAIProvider) GenerateMCQQuestions(ctx context.Context, topic, difficulty string, count int) ([]ai.MCQQuestion, error) {
	args := m.Called(ctx, topic, difficulty, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ai.MCQQuestion), args.Error(1)
}

func (m *MockAIProvider) GenerateSubjectiveQuestions(ctx context.Context, topic, difficulty string, count int) ([]string, error) {
	args := m.Called(ctx, topic, difficulty, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAIProvider) GenerateVoiceQuestions(ctx context.Context, topic, difficulty string, count int) ([]string, error) {
	args := m.Called(ctx, topic, difficulty, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAIProvider) EvaluateSubjectiveAnswer(ctx context.Context, question, answer, rubric string) (*ai.SubjectiveEvaluation, error) {
	args := m.Called(ctx, question, answer, rubric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.SubjectiveEvaluation), args.Error(1)
}

func (m *MockAIProvider) EvaluateVoiceResponse(ctx context.Context, question, transcription, rubric string) (*ai.VoiceEvaluation, error) {
	args := m.Called(ctx, question, transcription, rubric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.VoiceEvaluation), args.Error(1)
}

func (m *MockAIProvider) GenerateFinalFeedback(ctx context.Context, assessmentTitle string, mcqScore, subjectiveScore, voiceScore float64) (string, error) {
	args := m.Called(ctx, assessmentTitle, mcqScore, subjectiveScore, voiceScore)
	return args.String(0), args.Error(1)
}

func (m *MockAIProvider) TranscribeAudio(ctx context.Context, filename string, audio io.Reader) (string, error) {
	args := m.Called(ctx, filename, audio)
	return args.String(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendCompletionSummary(ctx context.Context, toEmail, assessmentTitle string, score float64, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, assessmentTitle, score, idempotencyKey)
	return args.Error(0)
}
