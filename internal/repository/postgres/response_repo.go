package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// ResponseRepo implements repository.ResponseRepository.
type ResponseRepo struct {
	db *gorm.DB
}

// NewResponseRepo creates a new response repository.
func NewResponseRepo(db *gorm.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// Create inserts a new response. Unique index idx_session_question makes the
// (session, question) pair write-once.
func (r *ResponseRepo) Create(response *entity.Response) error {
	if err := r.db.Create(response).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session #%d question #%d",
				repository.ErrResponseAlreadyExists, response.SessionID, response.QuestionID)
		}
		return err
	}
	return nil
}

// GetBySessionID returns all responses of a session in answer order.
func (r *ResponseRepo) GetBySessionID(sessionID uint) ([]entity.Response, error) {
	var responses []entity.Response
	err := r.db.Where("session_id = ?", sessionID).
		Order("answered_at ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetBySessionAndQuestion returns one response by its (session, question) pair.
func (r *ResponseRepo) GetBySessionAndQuestion(sessionID, questionID uint) (*entity.Response, error) {
	var response entity.Response
	err := r.db.Where("session_id = ? AND question_id = ?", sessionID, questionID).
		First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}
