package repository

import (
	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByAssessmentID(assessmentID uint) ([]entity.Question, error)
	CountByAssessmentID(assessmentID uint) (int64, error)
}
