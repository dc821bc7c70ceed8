package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Evaluation is the per-response grading record, persisted as structured
// JSONB. The populated fields depend on the question type: MCQ responses
// carry only the correctness flag, subjective and voice responses carry the
// evaluator's overall score, sub-scores and qualitative notes. All fields
// except Kind are optional so that partial evaluator payloads still round-trip.
type Evaluation struct {
	Kind string `json:"kind"` // mcq, subjective, voice

	// MCQ.
	Correct *bool `json:"correct,omitempty"`

	// Shared by subjective and voice: overall 0-100 and narrative feedback.
	Score    *float64 `json:"score,omitempty"`
	Feedback string   `json:"feedback,omitempty"`

	// Subjective sub-scores, 0-10 each.
	Relevance *float64 `json:"relevance,omitempty"`
	Clarity   *float64 `json:"clarity,omitempty"`
	Depth     *float64 `json:"depth,omitempty"`

	Strengths    StringArray `json:"strengths,omitempty"`
	Improvements StringArray `json:"improvements,omitempty"`

	// Voice sub-scores, 0-10 each. Clarity is shared with subjective above.
	Communication *float64 `json:"communication,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Content       *float64 `json:"content,omitempty"`
}

// Scan implements sql.Scanner so GORM can read the JSONB column.
func (e *Evaluation) Scan(value interface{}) error {
	if value == nil {
		*e = Evaluation{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*e = Evaluation{}
		return nil
	}

	return json.Unmarshal(bytes, e)
}

// Value implements driver.Valuer so GORM can write the JSONB column.
func (e Evaluation) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// MCQEvaluation builds the evaluation record for a graded MCQ answer.
func MCQEvaluation(correct bool) Evaluation {
	return Evaluation{Kind: QuestionTypeMCQ, Correct: &correct}
}
