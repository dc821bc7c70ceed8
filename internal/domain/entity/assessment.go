package entity

import (
	"time"
)

// Assessment difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Assessment is a timed interview test built from generated questions.
// Immutable after question generation except for the total question count.
type Assessment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"size:1000;not null;default:''" json:"description"`
	Category       string    `gorm:"size:100;not null" json:"category"`
	Difficulty     string    `gorm:"size:20;not null" json:"difficulty"` // beginner, intermediate, advanced
	Duration       int       `gorm:"not null" json:"duration"`           // minutes
	TotalQuestions int       `gorm:"not null;default:0" json:"total_questions"`
	HasVoice       bool      `gorm:"not null;default:false" json:"has_voice"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Questions []Question `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`
}

// TableName sets the GORM table name.
func (Assessment) TableName() string {
	return "assessments"
}

// DurationSeconds returns the time budget for a fresh session.
func (a *Assessment) DurationSeconds() int {
	return a.Duration * 60
}
