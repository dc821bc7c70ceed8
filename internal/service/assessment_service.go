package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/assessment-api/internal/ai"
	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// Default question counts for AI generation.
const (
	defaultMCQCount        = 20
	defaultSubjectiveCount = 5
	defaultVoiceCount      = 3

	mcqPoints        = 1
	subjectivePoints = 5
	voicePoints      = 5
)

// AssessmentService manages assessments and their question banks.
type AssessmentService struct {
	assessmentRepo repository.AssessmentRepository
	questionRepo   repository.QuestionRepository
	aiProvider     ai.Provider
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(
	assessmentRepo repository.AssessmentRepository,
	questionRepo repository.QuestionRepository,
	aiProvider ai.Provider,
) *AssessmentService {
	return &AssessmentService{
		assessmentRepo: assessmentRepo,
		questionRepo:   questionRepo,
		aiProvider:     aiProvider,
	}
}

// CreateAssessment creates a new assessment shell without questions.
func (s *AssessmentService) CreateAssessment(assessment *entity.Assessment) error {
	if strings.TrimSpace(assessment.Title) == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if assessment.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
	}
	switch assessment.Difficulty {
	case entity.DifficultyBeginner, entity.DifficultyIntermediate, entity.DifficultyAdvanced:
	default:
		return fmt.Errorf("%w: invalid difficulty %q", apperrors.ErrValidation, assessment.Difficulty)
	}

	if err := s.assessmentRepo.Create(assessment); err != nil {
		log.Printf("[AssessmentService] Failed to create assessment %q: %v", assessment.Title, err)
		return err
	}
	log.Printf("[AssessmentService] Created assessment #%d (%s)", assessment.ID, assessment.Title)
	return nil
}

// GetAssessment returns an assessment without its questions.
func (s *AssessmentService) GetAssessment(id uint) (*entity.Assessment, error) {
	return s.assessmentRepo.GetByID(id)
}

// GetAssessmentWithQuestions returns an assessment with questions ordered by
// their position.
func (s *AssessmentService) GetAssessmentWithQuestions(id uint) (*entity.Assessment, error) {
	return s.assessmentRepo.GetWithQuestions(id)
}

// ListActiveAssessments returns assessments open to candidates.
func (s *AssessmentService) ListActiveAssessments() ([]entity.Assessment, error) {
	return s.assessmentRepo.ListActive()
}

// ListAssessments returns a paginated list of all assessments (admin view).
func (s *AssessmentService) ListAssessments(page, pageSize int) ([]entity.Assessment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.assessmentRepo.List(pageSize, offset)
}

// UpdateAssessment saves changes to an assessment.
func (s *AssessmentService) UpdateAssessment(assessment *entity.Assessment) error {
	return s.assessmentRepo.Update(assessment)
}

// GenerateOptions controls how many questions of each type to generate.
// Zero values fall back to the defaults.
type GenerateOptions struct {
	MCQCount        int
	SubjectiveCount int
	VoiceCount      int
}

// GenerateQuestions asks the AI provider for questions of each type and
// appends them to the assessment's bank in sequential order. MCQ questions
// come first, then subjective, then voice.
func (s *AssessmentService) GenerateQuestions(ctx context.Context, assessmentID uint, opts GenerateOptions) ([]entity.Question, error) {
	assessment, err := s.assessmentRepo.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}

	mcqCount := opts.MCQCount
	if mcqCount <= 0 {
		mcqCount = defaultMCQCount
	}
	subjectiveCount := opts.SubjectiveCount
	if subjectiveCount <= 0 {
		subjectiveCount = defaultSubjectiveCount
	}
	voiceCount := opts.VoiceCount
	if voiceCount <= 0 {
		voiceCount = defaultVoiceCount
	}
	if !assessment.HasVoice {
		voiceCount = 0
	}

	topic := assessment.Title

	// New questions append after whatever the bank already holds.
	existing, err := s.questionRepo.CountByAssessmentID(assessmentID)
	if err != nil {
		return nil, err
	}
	orderIndex := int(existing)

	questions := make([]entity.Question, 0, mcqCount+subjectiveCount+voiceCount)

	mcqs, err := s.aiProvider.GenerateMCQQuestions(ctx, topic, assessment.Difficulty, mcqCount)
	if err != nil {
		log.Printf("[AssessmentService] MCQ generation failed for assessment #%d: %v", assessmentID, err)
		return nil, err
	}
	for _, q := range mcqs {
		questions = append(questions, entity.Question{
			AssessmentID:  assessmentID,
			Type:          entity.QuestionTypeMCQ,
			Text:          q.Question,
			Options:       entity.StringArray(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Points:        mcqPoints,
			OrderIndex:    orderIndex,
		})
		orderIndex++
	}

	subjective, err := s.aiProvider.GenerateSubjectiveQuestions(ctx, topic, assessment.Difficulty, subjectiveCount)
	if err != nil {
		log.Printf("[AssessmentService] Subjective generation failed for assessment #%d: %v", assessmentID, err)
		return nil, err
	}
	for _, text := range subjective {
		questions = append(questions, entity.Question{
			AssessmentID: assessmentID,
			Type:         entity.QuestionTypeSubjective,
			Text:         text,
			Points:       subjectivePoints,
			OrderIndex:   orderIndex,
		})
		orderIndex++
	}

	if voiceCount > 0 {
		voice, err := s.aiProvider.GenerateVoiceQuestions(ctx, topic, assessment.Difficulty, voiceCount)
		if err != nil {
			log.Printf("[AssessmentService] Voice generation failed for assessment #%d: %v", assessmentID, err)
			return nil, err
		}
		for _, text := range voice {
			questions = append(questions, entity.Question{
				AssessmentID: assessmentID,
				Type:         entity.QuestionTypeVoice,
				Text:         text,
				Points:       voicePoints,
				OrderIndex:   orderIndex,
			})
			orderIndex++
		}
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("AI provider returned no questions for assessment #%d", assessmentID)
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		log.Printf("[AssessmentService] Failed to save %d generated questions for assessment #%d: %v", len(questions), assessmentID, err)
		return nil, err
	}

	if err := s.assessmentRepo.UpdateTotalQuestions(assessmentID, orderIndex); err != nil {
		log.Printf("[AssessmentService] Warning: failed to update question count for assessment #%d: %v", assessmentID, err)
	}

	log.Printf("[AssessmentService] Generated %d questions for assessment #%d (%d mcq, %d subjective, %d voice)",
		len(questions), assessmentID, len(mcqs), len(subjective), len(questions)-len(mcqs)-len(subjective))
	return questions, nil
}
