package entity

import (
	"time"
)

// Response is a candidate's answer to one question in one session.
// Created exactly once per (session, question) pair and never mutated.
type Response struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SessionID     uint       `gorm:"not null;index;uniqueIndex:idx_session_question" json:"session_id"`
	QuestionID    uint       `gorm:"not null;index;uniqueIndex:idx_session_question" json:"question_id"`
	Answer        string     `gorm:"type:text;not null;default:''" json:"answer"`       // option letter or free text
	AudioURL      string     `gorm:"size:255;not null;default:''" json:"audio_url"`     // voice responses
	Transcription string     `gorm:"type:text;not null;default:''" json:"transcription"` // speech-to-text result
	Score         float64    `gorm:"not null;default:0" json:"score"`
	Evaluation    Evaluation `gorm:"type:jsonb" json:"evaluation"`
	AnsweredAt    time.Time  `gorm:"not null" json:"answered_at"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

// TableName sets the GORM table name.
func (Response) TableName() string {
	return "responses"
}
