package repository

import (
	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// AssessmentRepository defines persistence operations for assessments.
type AssessmentRepository interface {
	Create(assessment *entity.Assessment) error
	GetByID(id uint) (*entity.Assessment, error)
	GetWithQuestions(id uint) (*entity.Assessment, error)
	ListActive() ([]entity.Assessment, error)
	List(limit, offset int) ([]entity.Assessment, int64, error)
	Update(assessment *entity.Assessment) error
	UpdateTotalQuestions(assessmentID uint, total int) error
}
