package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Question types.
const (
	QuestionTypeMCQ        = "mcq"
	QuestionTypeSubjective = "subjective"
	QuestionTypeVoice      = "voice"
)

// StringArray is a custom type for JSONB string arrays.
type StringArray []string

// Scan implements sql.Scanner so GORM can read JSONB columns.
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value implements driver.Valuer so GORM can write JSONB columns.
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // empty JSON array instead of null
	}
	return json.Marshal(o)
}

// Question belongs to one assessment. MCQ questions carry options and the
// correct option letter; subjective and voice questions carry an optional
// grading rubric for the evaluator.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	AssessmentID  uint        `gorm:"not null;index;uniqueIndex:idx_assessment_order" json:"assessment_id"`
	Type          string      `gorm:"size:20;not null" json:"type"` // mcq, subjective, voice
	Text          string      `gorm:"size:2000;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswer string      `gorm:"size:10;not null;default:''" json:"-"` // hidden from candidates
	Rubric        string      `gorm:"size:2000;not null;default:''" json:"rubric,omitempty"`
	Points        int         `gorm:"not null;default:1" json:"points"`
	OrderIndex    int         `gorm:"not null;uniqueIndex:idx_assessment_order" json:"order_index"`
	CreatedAt     time.Time   `json:"created_at"`
}

// TableName sets the GORM table name.
func (Question) TableName() string {
	return "questions"
}

// IsCorrect reports whether the submitted option letter matches the stored answer.
func (q *Question) IsCorrect(selected string) bool {
	return selected != "" && selected == q.CorrectAnswer
}

// Grade returns the MCQ score for a submitted option: full points or zero.
func (q *Question) Grade(selected string) float64 {
	if q.IsCorrect(selected) {
		return float64(q.Points)
	}
	return 0
}

// RequiresEvaluator reports whether grading needs the external evaluator.
func (q *Question) RequiresEvaluator() bool {
	return q.Type == QuestionTypeSubjective || q.Type == QuestionTypeVoice
}
