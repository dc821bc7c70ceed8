package entity

import (
	"time"
)

// Session statuses.
const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusPaused     = "paused"
)

// Session tracks one candidate's run through an assessment.
// Category scores stay null until completion; after aggregation an absent
// category stores 0, which distinguishes "not yet computed" from
// "computed, category was not tested".
type Session struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	AssessmentID         uint       `gorm:"not null;index" json:"assessment_id"`
	Status               string     `gorm:"size:20;not null;default:'in_progress'" json:"status"` // in_progress, completed, paused
	StartedAt            time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CurrentQuestionIndex int        `gorm:"not null;default:0" json:"current_question_index"`
	TimeRemaining        int        `gorm:"not null;default:0" json:"time_remaining"` // seconds
	TotalScore           *float64   `json:"total_score,omitempty"`
	MCQScore             *float64   `json:"mcq_score,omitempty"`
	SubjectiveScore      *float64   `json:"subjective_score,omitempty"`
	VoiceScore           *float64   `json:"voice_score,omitempty"`
	Feedback             string     `gorm:"type:text;not null;default:''" json:"feedback,omitempty"`

	Assessment *Assessment `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
	Responses  []Response  `gorm:"foreignKey:SessionID" json:"responses,omitempty"`
}

// TableName sets the GORM table name.
func (Session) TableName() string {
	return "assessment_sessions"
}

// IsOwnedBy reports whether the session belongs to the given user.
func (s *Session) IsOwnedBy(userID uint) bool {
	return s.UserID == userID
}

// IsActive reports whether the session still accepts answers.
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusInProgress
}
