package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// QuestionRepo implements repository.QuestionRepository.
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a new question repository.
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create inserts a new question.
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch inserts several questions in one statement.
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

// GetByID returns a question by ID.
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByAssessmentID returns the assessment's questions in presentation order.
func (r *QuestionRepo) GetByAssessmentID(assessmentID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("assessment_id = ?", assessmentID).
		Order("order_index ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByAssessmentID returns the number of questions in an assessment.
func (r *QuestionRepo) CountByAssessmentID(assessmentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error
	return count, err
}
