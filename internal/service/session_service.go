package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// SessionService manages assessment session lifecycle.
type SessionService struct {
	sessionRepo    repository.SessionRepository
	assessmentRepo repository.AssessmentRepository
	cacheRepo      repository.CacheRepository
}

// NewSessionService creates a new session service.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	assessmentRepo repository.AssessmentRepository,
	cacheRepo repository.CacheRepository,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		assessmentRepo: assessmentRepo,
		cacheRepo:      cacheRepo,
	}
}

// StartSession returns the user's in_progress session for the assessment,
// creating one when none exists. Two concurrent starts converge on a single
// session: the partial unique index rejects the loser, which then fetches
// the winner's row.
func (s *SessionService) StartSession(userID, assessmentID uint) (*entity.Session, error) {
	assessment, err := s.assessmentRepo.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if !assessment.IsActive {
		return nil, fmt.Errorf("%w: assessment is not active", apperrors.ErrForbidden)
	}

	if existing, err := s.sessionRepo.GetActiveByUserAndAssessment(userID, assessmentID); err == nil {
		log.Printf("[SessionService] Resuming session #%d for user #%d on assessment #%d", existing.ID, userID, assessmentID)
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// Fast-path guard against doubled-up start requests. Best effort only;
	// the database index is the real arbiter.
	lockKey := fmt.Sprintf("session:start:%d:%d", userID, assessmentID)
	acquired, lockErr := s.cacheRepo.SetNX(lockKey, 1, 10*time.Second)
	if lockErr == nil && !acquired {
		if existing, err := s.sessionRepo.GetActiveByUserAndAssessment(userID, assessmentID); err == nil {
			return existing, nil
		}
	}
	// Only the holder releases the lock; a losing request must not delete it.
	if acquired {
		defer func() {
			if err := s.cacheRepo.Delete(lockKey); err != nil {
				log.Printf("[SessionService] Warning: failed to release start lock %s: %v", lockKey, err)
			}
		}()
	}

	session := &entity.Session{
		UserID:        userID,
		AssessmentID:  assessmentID,
		Status:        entity.SessionStatusInProgress,
		StartedAt:     time.Now(),
		TimeRemaining: assessment.DurationSeconds(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyActive) {
			// Lost the race; return the session that won.
			return s.sessionRepo.GetActiveByUserAndAssessment(userID, assessmentID)
		}
		log.Printf("[SessionService] Failed to create session for user #%d on assessment #%d: %v", userID, assessmentID, err)
		return nil, err
	}

	log.Printf("[SessionService] Started session #%d for user #%d on assessment #%d", session.ID, userID, assessmentID)
	return session, nil
}

// GetSession returns a session. Candidates may only read their own; admins
// may read any.
func (s *SessionService) GetSession(sessionID, requesterID uint, isAdmin bool) (*entity.Session, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !session.IsOwnedBy(requesterID) {
		return nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)
	}
	return session, nil
}

// UpdateProgress persists the candidate's position and remaining time.
// Completed sessions reject further updates.
func (s *SessionService) UpdateProgress(sessionID, requesterID uint, currentQuestionIndex, timeRemaining int, status string) (*entity.Session, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOwnedBy(requesterID) {
		return nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)
	}
	if session.Status == entity.SessionStatusCompleted {
		return nil, fmt.Errorf("%w: session is already completed", apperrors.ErrConflict)
	}

	if currentQuestionIndex < 0 {
		return nil, fmt.Errorf("%w: current_question_index must not be negative", apperrors.ErrValidation)
	}
	if timeRemaining < 0 {
		timeRemaining = 0
	}
	switch status {
	case "":
		status = session.Status
	case entity.SessionStatusInProgress, entity.SessionStatusPaused:
	case entity.SessionStatusCompleted:
		return nil, fmt.Errorf("%w: completion goes through the complete endpoint", apperrors.ErrValidation)
	default:
		return nil, fmt.Errorf("%w: invalid status %q", apperrors.ErrValidation, status)
	}

	if err := s.sessionRepo.UpdateProgress(sessionID, currentQuestionIndex, timeRemaining, status); err != nil {
		log.Printf("[SessionService] Failed to update progress for session #%d: %v", sessionID, err)
		return nil, err
	}

	session.CurrentQuestionIndex = currentQuestionIndex
	session.TimeRemaining = timeRemaining
	session.Status = status
	return session, nil
}

// ListUserSessions returns all sessions of a user, newest first.
func (s *SessionService) ListUserSessions(userID uint) ([]entity.Session, error) {
	return s.sessionRepo.ListByUser(userID)
}
