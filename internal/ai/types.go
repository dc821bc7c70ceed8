package ai

import (
	"context"
	"io"
)

// MCQQuestion is a generated multiple-choice question.
type MCQQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// SubjectiveEvaluation is the structured verdict for a written answer.
// Score is 0-100, the sub-criteria are 0-10.
type SubjectiveEvaluation struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Relevance    float64  `json:"relevance"`
	Clarity      float64  `json:"clarity"`
	Depth        float64  `json:"depth"`
}

// VoiceEvaluation is the structured verdict for a transcribed voice response.
// Score is 0-100, the sub-criteria are 0-10.
type VoiceEvaluation struct {
	Score         float64 `json:"score"`
	Feedback      string  `json:"feedback"`
	Communication float64 `json:"communication"`
	Confidence    float64 `json:"confidence"`
	Clarity       float64 `json:"clarity"`
	Content       float64 `json:"content"`
}

// Provider generates assessment content and evaluates candidate responses.
type Provider interface {
	GenerateMCQQuestions(ctx context.Context, topic, difficulty string, count int) ([]MCQQuestion, error)
	GenerateSubjectiveQuestions(ctx context.Context, topic, difficulty string, count int) ([]string, error)
	GenerateVoiceQuestions(ctx context.Context, topic, difficulty string, count int) ([]string, error)
	EvaluateSubjectiveAnswer(ctx context.Context, question, answer, rubric string) (*SubjectiveEvaluation, error)
	EvaluateVoiceResponse(ctx context.Context, question, transcription, rubric string) (*VoiceEvaluation, error)
	GenerateFinalFeedback(ctx context.Context, assessmentTitle string, mcqScore, subjectiveScore, voiceScore float64) (string, error)
	TranscribeAudio(ctx context.Context, filename string, audio io.Reader) (string, error)
}
