package dto

import (
	"time"

	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// SessionResponse is a session in client format.
type SessionResponse struct {
	ID                   uint                `json:"id"`
	UserID               uint                `json:"user_id"`
	AssessmentID         uint                `json:"assessment_id"`
	Status               string              `json:"status"`
	StartedAt            time.Time           `json:"started_at"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	CurrentQuestionIndex int                 `json:"current_question_index"`
	TimeRemaining        int                 `json:"time_remaining"`
	TotalScore           *float64            `json:"total_score,omitempty"`
	MCQScore             *float64            `json:"mcq_score,omitempty"`
	SubjectiveScore      *float64            `json:"subjective_score,omitempty"`
	VoiceScore           *float64            `json:"voice_score,omitempty"`
	Feedback             string              `json:"feedback,omitempty"`
	Assessment           *AssessmentResponse `json:"assessment,omitempty"`
}

// NewSessionResponse builds the session DTO.
func NewSessionResponse(s *entity.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:                   s.ID,
		UserID:               s.UserID,
		AssessmentID:         s.AssessmentID,
		Status:               s.Status,
		StartedAt:            s.StartedAt,
		CompletedAt:          s.CompletedAt,
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		TimeRemaining:        s.TimeRemaining,
		TotalScore:           s.TotalScore,
		MCQScore:             s.MCQScore,
		SubjectiveScore:      s.SubjectiveScore,
		VoiceScore:           s.VoiceScore,
		Feedback:             s.Feedback,
	}
	if s.Assessment != nil {
		resp.Assessment = NewAssessmentResponse(s.Assessment, false)
	}
	return resp
}

// ResponseResponse is a graded answer in client format.
type ResponseResponse struct {
	ID            uint              `json:"id"`
	SessionID     uint              `json:"session_id"`
	QuestionID    uint              `json:"question_id"`
	Answer        string            `json:"answer,omitempty"`
	AudioURL      string            `json:"audio_url,omitempty"`
	Transcription string            `json:"transcription,omitempty"`
	Score         float64           `json:"score"`
	Evaluation    entity.Evaluation `json:"evaluation"`
	AnsweredAt    time.Time         `json:"answered_at"`
}

// NewResponseResponse builds the graded answer DTO.
func NewResponseResponse(r *entity.Response) *ResponseResponse {
	return &ResponseResponse{
		ID:            r.ID,
		SessionID:     r.SessionID,
		QuestionID:    r.QuestionID,
		Answer:        r.Answer,
		AudioURL:      r.AudioURL,
		Transcription: r.Transcription,
		Score:         r.Score,
		Evaluation:    r.Evaluation,
		AnsweredAt:    r.AnsweredAt,
	}
}
