package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

func createTestSessionServiceWithMocks() (*SessionService, *MockSessionRepository, *MockAssessmentRepository, *MockCacheRepository) {
	sessionRepo := new(MockSessionRepository)
	assessmentRepo := new(MockAssessmentRepository)
	cacheRepo := new(MockCacheRepository)

	svc := NewSessionService(sessionRepo, assessmentRepo, cacheRepo)
	return svc, sessionRepo, assessmentRepo, cacheRepo
}

func TestStartSession_CreatesNewSession(t *testing.T) {
	svc, sessionRepo, assessmentRepo, cacheRepo := createTestSessionServiceWithMocks()

	assessmentRepo.On("GetByID", uint(3)).Return(&entity.Assessment{ID: 3, IsActive: true, Duration: 45}, nil)
	sessionRepo.On("GetActiveByUserAndAssessment", uint(7), uint(3)).Return(nil, apperrors.ErrNotFound)
	cacheRepo.On("SetNX", "session:start:7:3", mock.Anything, mock.Anything).Return(true, nil)
	cacheRepo.On("Delete", "session:start:7:3").Return(nil)
	sessionRepo.On("Create", mock.AnythingOfType("*entity.Session")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Session).ID = 42
	}).Return(nil)

	session, err := svc.StartSession(7, 3)

	require.NoError(t, err)
	assert.Equal(t, uint(42), session.ID)
	assert.Equal(t, entity.SessionStatusInProgress, session.Status)
	assert.Equal(t, 45*60, session.TimeRemaining)
	sessionRepo.AssertExpectations(t)
}

func TestStartSession_ReusesActiveSession(t *testing.T) {
	svc, sessionRepo, assessmentRepo, _ := createTestSessionServiceWithMocks()

	assessmentRepo.On("GetByID", uint(3)).Return(&entity.Assessment{ID: 3, IsActive: true, Duration: 45}, nil)
	existing := &entity.Session{ID: 11, UserID: 7, AssessmentID: 3, Status: entity.SessionStatusInProgress}
	sessionRepo.On("GetActiveByUserAndAssessment", uint(7), uint(3)).Return(existing, nil)

	session, err := svc.StartSession(7, 3)

	require.NoError(t, err)
	assert.Equal(t, uint(11), session.ID)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestStartSession_LostRaceReturnsWinnersSession(t *testing.T) {
	svc, sessionRepo, assessmentRepo, cacheRepo := createTestSessionServiceWithMocks()

	assessmentRepo.On("GetByID", uint(3)).Return(&entity.Assessment{ID: 3, IsActive: true, Duration: 45}, nil)
	winner := &entity.Session{ID: 12, UserID: 7, AssessmentID: 3, Status: entity.SessionStatusInProgress}
	// First lookup sees nothing, the insert hits the unique index and the
	// retry lookup finds the concurrent winner.
	sessionRepo.On("GetActiveByUserAndAssessment", uint(7), uint(3)).Return(nil, apperrors.ErrNotFound).Once()
	cacheRepo.On("SetNX", "session:start:7:3", mock.Anything, mock.Anything).Return(true, nil)
	cacheRepo.On("Delete", "session:start:7:3").Return(nil)
	sessionRepo.On("Create", mock.AnythingOfType("*entity.Session")).Return(repository.ErrSessionAlreadyActive)
	sessionRepo.On("GetActiveByUserAndAssessment", uint(7), uint(3)).Return(winner, nil).Once()

	session, err := svc.StartSession(7, 3)

	require.NoError(t, err)
	assert.Equal(t, uint(12), session.ID)
}

func TestStartSession_LosingStartKeepsWinnersLock(t *testing.T) {
	svc, sessionRepo, assessmentRepo, cacheRepo := createTestSessionServiceWithMocks()

	assessmentRepo.On("GetByID", uint(3)).Return(&entity.Assessment{ID: 3, IsActive: true, Duration: 45}, nil)
	winner := &entity.Session{ID: 12, UserID: 7, AssessmentID: 3, Status: entity.SessionStatusInProgress}
	// The lock is held by a concurrent start whose row is not yet visible:
	// both lookups miss, the insert loses on the unique index, the retry
	// lookup finds the winner. The loser never held the lock and must not
	// release it.
	sessionRepo.On("GetActiveByUserAndAssessment", uint(7), uint(3)).Return(nil, apperrors.ErrNotFound).Once()
	cacheRepo.On("SetNX", "session:start:7:3", mock.Anything, mock.Anything).Return(false, nil)
	sessionRepo.On("GetActiveByUserAndAssessment", uint(7), uint(3)).Return(nil, apperrors.ErrNotFound).Once()
	sessionRepo.On("Create", mock.AnythingOfType("*entity.Session")).Return(repository.ErrSessionAlreadyActive)
	sessionRepo.On("GetActiveByUserAndAssessment", uint(7), uint(3)).Return(winner, nil).Once()

	session, err := svc.StartSession(7, 3)

	require.NoError(t, err)
	assert.Equal(t, uint(12), session.ID)
	cacheRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestStartSession_InactiveAssessment(t *testing.T) {
	svc, sessionRepo, assessmentRepo, _ := createTestSessionServiceWithMocks()

	assessmentRepo.On("GetByID", uint(3)).Return(&entity.Assessment{ID: 3, IsActive: false}, nil)

	_, err := svc.StartSession(7, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestGetSession_AdminMayReadAny(t *testing.T) {
	svc, sessionRepo, _, _ := createTestSessionServiceWithMocks()

	session := &entity.Session{ID: 5, UserID: 7}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)

	got, err := svc.GetSession(5, 99, true)

	require.NoError(t, err)
	assert.Equal(t, uint(5), got.ID)
}

func TestGetSession_CandidateCannotReadOthers(t *testing.T) {
	svc, sessionRepo, _, _ := createTestSessionServiceWithMocks()

	session := &entity.Session{ID: 5, UserID: 7}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)

	_, err := svc.GetSession(5, 99, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateProgress_CompletedSessionRejected(t *testing.T) {
	svc, sessionRepo, _, _ := createTestSessionServiceWithMocks()

	session := &entity.Session{ID: 5, UserID: 7, Status: entity.SessionStatusCompleted}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)

	_, err := svc.UpdateProgress(5, 7, 3, 1000, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdateProgress_CompletionNotAllowedViaPatch(t *testing.T) {
	svc, sessionRepo, _, _ := createTestSessionServiceWithMocks()

	session := &entity.Session{ID: 5, UserID: 7, Status: entity.SessionStatusInProgress}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)

	_, err := svc.UpdateProgress(5, 7, 3, 1000, entity.SessionStatusCompleted)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateProgress_EmptyStatusKeepsCurrent(t *testing.T) {
	svc, sessionRepo, _, _ := createTestSessionServiceWithMocks()

	session := &entity.Session{ID: 5, UserID: 7, Status: entity.SessionStatusPaused}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)
	sessionRepo.On("UpdateProgress", uint(5), 3, 1000, entity.SessionStatusPaused).Return(nil)

	got, err := svc.UpdateProgress(5, 7, 3, 1000, "")

	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusPaused, got.Status)
	assert.Equal(t, 3, got.CurrentQuestionIndex)
	sessionRepo.AssertExpectations(t)
}

func TestUpdateProgress_NegativeIndexRejected(t *testing.T) {
	svc, sessionRepo, _, _ := createTestSessionServiceWithMocks()

	session := &entity.Session{ID: 5, UserID: 7, Status: entity.SessionStatusInProgress}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)

	_, err := svc.UpdateProgress(5, 7, -1, 1000, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
