package repository

import (
	"time"

	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// SessionRepository defines persistence operations for assessment sessions.
type SessionRepository interface {
	// Create inserts a new session. Returns ErrSessionAlreadyActive when the
	// partial unique index on (user_id, assessment_id, status=in_progress)
	// rejects a duplicate.
	Create(session *entity.Session) error
	GetByID(id uint) (*entity.Session, error)
	// GetActiveByUserAndAssessment returns the in_progress session for the
	// pair, or apperrors.ErrNotFound.
	GetActiveByUserAndAssessment(userID, assessmentID uint) (*entity.Session, error)
	UpdateProgress(sessionID uint, currentQuestionIndex, timeRemaining int, status string) error
	ListByUser(userID uint) ([]entity.Session, error)
	CountByStatus(status string) (int64, error)
	CountCompletedBetween(from, to time.Time) (int64, error)
	ListCompletedByAssessment(assessmentID uint) ([]entity.Session, error)
}
