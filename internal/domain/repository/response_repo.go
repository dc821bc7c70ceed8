package repository

import (
	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// ResponseRepository defines persistence operations for responses.
type ResponseRepository interface {
	// Create inserts a new response. Returns ErrResponseAlreadyExists when
	// the unique index on (session_id, question_id) rejects a duplicate.
	Create(response *entity.Response) error
	GetBySessionID(sessionID uint) ([]entity.Response, error)
	GetBySessionAndQuestion(sessionID, questionID uint) (*entity.Response, error)
}
