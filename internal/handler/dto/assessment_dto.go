package dto

import (
	"time"

	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// QuestionResponse is a question as seen by a candidate. The correct MCQ
// option is stripped before serialization.
type QuestionResponse struct {
	ID           uint      `json:"id"`
	AssessmentID uint      `json:"assessment_id"`
	Type         string    `json:"type"`
	Text         string    `json:"text"`
	Options      []string  `json:"options,omitempty"`
	Points       int       `json:"points"`
	OrderIndex   int       `json:"order_index"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewQuestionResponse builds the candidate-facing question DTO.
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:           q.ID,
		AssessmentID: q.AssessmentID,
		Type:         q.Type,
		Text:         q.Text,
		Options:      q.Options,
		Points:       q.Points,
		OrderIndex:   q.OrderIndex,
		CreatedAt:    q.CreatedAt,
	}
}

// AssessmentResponse is an assessment in client format.
type AssessmentResponse struct {
	ID             uint               `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Category       string             `json:"category"`
	Difficulty     string             `json:"difficulty"`
	Duration       int                `json:"duration"`
	TotalQuestions int                `json:"total_questions"`
	HasVoice       bool               `json:"has_voice"`
	IsActive       bool               `json:"is_active"`
	Questions      []QuestionResponse `json:"questions,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewAssessmentResponse builds the assessment DTO, optionally embedding the
// question list.
func NewAssessmentResponse(a *entity.Assessment, includeQuestions bool) *AssessmentResponse {
	resp := &AssessmentResponse{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Category:       a.Category,
		Difficulty:     a.Difficulty,
		Duration:       a.Duration,
		TotalQuestions: a.TotalQuestions,
		HasVoice:       a.HasVoice,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if includeQuestions {
		resp.Questions = make([]QuestionResponse, 0, len(a.Questions))
		for i := range a.Questions {
			resp.Questions = append(resp.Questions, NewQuestionResponse(&a.Questions[i]))
		}
	}
	return resp
}

// PaginatedAssessmentResponse is the admin list view.
type PaginatedAssessmentResponse struct {
	Assessments []*AssessmentResponse `json:"assessments"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	PerPage     int                   `json:"per_page"`
}
