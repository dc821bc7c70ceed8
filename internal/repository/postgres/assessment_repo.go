package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// AssessmentRepo implements repository.AssessmentRepository.
type AssessmentRepo struct {
	db *gorm.DB
}

// NewAssessmentRepo creates a new assessment repository.
func NewAssessmentRepo(db *gorm.DB) *AssessmentRepo {
	return &AssessmentRepo{db: db}
}

// Create inserts a new assessment.
func (r *AssessmentRepo) Create(assessment *entity.Assessment) error {
	return r.db.Create(assessment).Error
}

// GetByID returns an assessment by ID.
func (r *AssessmentRepo) GetByID(id uint) (*entity.Assessment, error) {
	var assessment entity.Assessment
	err := r.db.First(&assessment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// GetWithQuestions returns an assessment with its questions preloaded in
// presentation order.
func (r *AssessmentRepo) GetWithQuestions(id uint) (*entity.Assessment, error) {
	var assessment entity.Assessment
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC")
	}).First(&assessment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// ListActive returns active assessments, newest first.
func (r *AssessmentRepo) ListActive() ([]entity.Assessment, error) {
	var assessments []entity.Assessment
	err := r.db.Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, err
	}
	return assessments, nil
}

// List returns assessments with pagination and total count.
func (r *AssessmentRepo) List(limit, offset int) ([]entity.Assessment, int64, error) {
	var assessments []entity.Assessment
	var total int64

	query := r.db.Model(&entity.Assessment{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&assessments).Error
	if err != nil {
		return nil, 0, err
	}
	return assessments, total, nil
}

// Update saves assessment changes.
func (r *AssessmentRepo) Update(assessment *entity.Assessment) error {
	return r.db.Save(assessment).Error
}

// UpdateTotalQuestions updates only the total question count.
func (r *AssessmentRepo) UpdateTotalQuestions(assessmentID uint, total int) error {
	return r.db.Model(&entity.Assessment{}).
		Where("id = ?", assessmentID).
		Update("total_questions", total).
		Error
}
