package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// SessionRepo implements repository.SessionRepository.
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo creates a new session repository.
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a new session.
// Partial unique index idx_session_single_in_progress guarantees at most one
// in_progress session per (user, assessment):
// - 23505 (unique violation) → ErrSessionAlreadyActive, caller fetches the existing row
// - any other DB error is returned as is
func (r *SessionRepo) Create(session *entity.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user #%d assessment #%d",
				repository.ErrSessionAlreadyActive, session.UserID, session.AssessmentID)
		}
		return err
	}
	return nil
}

// isUniqueViolation checks for a Postgres unique violation (23505) from both
// the pgconn and lib/pq drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// GetByID returns a session by ID.
func (r *SessionRepo) GetByID(id uint) (*entity.Session, error) {
	var session entity.Session
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetActiveByUserAndAssessment returns the in_progress session for the pair.
func (r *SessionRepo) GetActiveByUserAndAssessment(userID, assessmentID uint) (*entity.Session, error) {
	var session entity.Session
	err := r.db.Where("user_id = ? AND assessment_id = ? AND status = ?",
		userID, assessmentID, entity.SessionStatusInProgress).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// UpdateProgress updates the question pointer, the time budget and the status
// without touching score columns.
func (r *SessionRepo) UpdateProgress(sessionID uint, currentQuestionIndex, timeRemaining int, status string) error {
	return r.db.Model(&entity.Session{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"current_question_index": currentQuestionIndex,
			"time_remaining":         timeRemaining,
			"status":                 status,
		}).Error
}

// ListByUser returns the user's sessions, newest first, with the assessment
// summary preloaded.
func (r *SessionRepo) ListByUser(userID uint) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.Preload("Assessment").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountByStatus returns the number of sessions in the given status.
func (r *SessionRepo) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Session{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountCompletedBetween counts sessions completed in [from, to).
func (r *SessionRepo) CountCompletedBetween(from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Session{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?",
			entity.SessionStatusCompleted, from, to).
		Count(&count).Error
	return count, err
}

// ListCompletedByAssessment returns all completed sessions of an assessment,
// newest first. Used for the admin results export.
func (r *SessionRepo) ListCompletedByAssessment(assessmentID uint) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.Where("assessment_id = ? AND status = ?",
		assessmentID, entity.SessionStatusCompleted).
		Order("completed_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
