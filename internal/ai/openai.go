package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/yourusername/assessment-api/internal/config"
)

const defaultFeedback = "No feedback provided"

// OpenAIProvider talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIProvider struct {
	client             *resty.Client
	model              string
	transcriptionModel string
}

// NewOpenAIProvider creates a provider from config. The base URL may point at
// any endpoint speaking the OpenAI protocol (OpenAI, OpenRouter, a proxy).
func NewOpenAIProvider(cfg config.AIConfig) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	transcriptionModel := cfg.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = "whisper-1"
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)

	return &OpenAIProvider{
		client:             client,
		model:              model,
		transcriptionModel: transcriptionModel,
	}
}

// chatJSON sends a chat completion request in JSON mode and returns the
// message content of the first choice.
func (p *OpenAIProvider) chatJSON(ctx context.Context, system, prompt string) (string, error) {
	return p.chat(ctx, system, prompt, true)
}

func (p *OpenAIProvider) chat(ctx context.Context, system, prompt string, jsonMode bool) (string, error) {
	body := map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
	}
	if jsonMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.IsError() {
		apiMsg := gjson.GetBytes(resp.Body(), "error.message").String()
		log.Printf("[AI] Chat completion returned status %d: %s", resp.StatusCode(), apiMsg)
		return "", fmt.Errorf("chat completion returned status %d", resp.StatusCode())
	}

	content := gjson.GetBytes(resp.Body(), "choices.0.message.content").String()
	if content == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return content, nil
}

// GenerateMCQQuestions asks the model for multiple-choice questions.
func (p *OpenAIProvider) GenerateMCQQuestions(ctx context.Context, topic, difficulty string, count int) ([]MCQQuestion, error) {
	prompt := fmt.Sprintf(`Generate %d multiple choice questions for a %s level %s assessment.
Each question should have 4 options (A, B, C, D) with one correct answer.
Respond with JSON in this format:
{
  "questions": [
    {
      "question": "Question text",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "A",
      "explanation": "Why this answer is correct"
    }
  ]
}`, count, difficulty, topic)

	content, err := p.chatJSON(ctx, "You are an expert technical interviewer creating assessment questions.", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate MCQ questions: %w", err)
	}

	var parsed struct {
		Questions []MCQQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse MCQ questions: %w", err)
	}
	return parsed.Questions, nil
}

// GenerateSubjectiveQuestions asks the model for open-ended questions.
func (p *OpenAIProvider) GenerateSubjectiveQuestions(ctx context.Context, topic, difficulty string, count int) ([]string, error) {
	prompt := fmt.Sprintf(`Generate %d subjective/open-ended questions for a %s level %s assessment.
These should test deep understanding and practical application.
Respond with JSON in this format: { "questions": ["Question 1", "Question 2", ...] }`, count, difficulty, topic)

	content, err := p.chatJSON(ctx, "You are an expert technical interviewer creating in-depth assessment questions.", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subjective questions: %w", err)
	}
	return parseQuestionList(content)
}

// GenerateVoiceQuestions asks the model for voice interview questions.
func (p *OpenAIProvider) GenerateVoiceQuestions(ctx context.Context, topic, difficulty string, count int) ([]string, error) {
	prompt := fmt.Sprintf(`Generate %d voice interview questions for a %s level %s assessment.
These should test communication skills, thought process, and ability to explain concepts verbally.
Questions should encourage detailed explanations and examples.
Respond with JSON in this format: { "questions": ["Question 1", "Question 2", ...] }`, count, difficulty, topic)

	content, err := p.chatJSON(ctx, "You are an expert interviewer creating voice-based assessment questions.", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate voice questions: %w", err)
	}
	return parseQuestionList(content)
}

func parseQuestionList(content string) ([]string, error) {
	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse question list: %w", err)
	}
	return parsed.Questions, nil
}

// EvaluateSubjectiveAnswer grades a written answer. The returned overall
// score is clamped to [0, 100] and the sub-criteria to [0, 10]; missing
// fields default to zero so a sloppy model response never breaks grading.
func (p *OpenAIProvider) EvaluateSubjectiveAnswer(ctx context.Context, question, answer, rubric string) (*SubjectiveEvaluation, error) {
	var rubricLine string
	if rubric != "" {
		rubricLine = "Evaluation Rubric: " + rubric + "\n"
	}
	prompt := fmt.Sprintf(`Evaluate this subjective answer for a technical interview:

Question: %s
Answer: %s
%s
Provide a comprehensive evaluation with scores from 0-100 for overall score and 0-10 for individual criteria.
Respond with JSON in this format:
{
  "score": number,
  "feedback": "Detailed feedback explaining the score",
  "strengths": ["strength 1", "strength 2"],
  "improvements": ["improvement 1", "improvement 2"],
  "relevance": number,
  "clarity": number,
  "depth": number
}`, question, answer, rubricLine)

	content, err := p.chatJSON(ctx, "You are an expert technical interviewer evaluating candidate responses. Be fair but thorough in your assessment.", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate subjective answer: %w", err)
	}

	result := gjson.Parse(content)
	eval := &SubjectiveEvaluation{
		Score:        clampScore(result.Get("score").Float(), 100),
		Feedback:     fallbackFeedback(result.Get("feedback").String()),
		Strengths:    stringSlice(result.Get("strengths")),
		Improvements: stringSlice(result.Get("improvements")),
		Relevance:    clampScore(result.Get("relevance").Float(), 10),
		Clarity:      clampScore(result.Get("clarity").Float(), 10),
		Depth:        clampScore(result.Get("depth").Float(), 10),
	}
	return eval, nil
}

// EvaluateVoiceResponse grades a transcribed voice answer with the same
// clamping rules as EvaluateSubjectiveAnswer.
func (p *OpenAIProvider) EvaluateVoiceResponse(ctx context.Context, question, transcription, rubric string) (*VoiceEvaluation, error) {
	var rubricLine string
	if rubric != "" {
		rubricLine = "Evaluation Rubric: " + rubric + "\n"
	}
	prompt := fmt.Sprintf(`Evaluate this voice interview response:

Question: %s
Transcription: %s
%s
Evaluate based on content quality, communication skills, clarity of expression, and confidence.
Respond with JSON in this format:
{
  "score": number,
  "feedback": "Detailed feedback on the voice response",
  "communication": number,
  "confidence": number,
  "clarity": number,
  "content": number
}`, question, transcription, rubricLine)

	content, err := p.chatJSON(ctx, "You are an expert interviewer evaluating voice responses. Consider both content and communication skills.", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate voice response: %w", err)
	}

	result := gjson.Parse(content)
	eval := &VoiceEvaluation{
		Score:         clampScore(result.Get("score").Float(), 100),
		Feedback:      fallbackFeedback(result.Get("feedback").String()),
		Communication: clampScore(result.Get("communication").Float(), 10),
		Confidence:    clampScore(result.Get("confidence").Float(), 10),
		Clarity:       clampScore(result.Get("clarity").Float(), 10),
		Content:       clampScore(result.Get("content").Float(), 10),
	}
	return eval, nil
}

// GenerateFinalFeedback produces the narrative summary shown to a candidate
// after completing an assessment.
func (p *OpenAIProvider) GenerateFinalFeedback(ctx context.Context, assessmentTitle string, mcqScore, subjectiveScore, voiceScore float64) (string, error) {
	overall := (mcqScore + subjectiveScore + voiceScore) / 3

	prompt := fmt.Sprintf(`Generate comprehensive feedback for a candidate who completed a %s assessment:

MCQ Score: %.1f%%
Subjective Score: %.1f%%
Voice Score: %.1f%%
Overall Score: %.1f%%

Provide encouraging but honest feedback highlighting strengths and areas for improvement.
Include specific actionable recommendations for skill development.`,
		assessmentTitle, mcqScore, subjectiveScore, voiceScore, overall)

	content, err := p.chat(ctx, "You are a supportive career mentor providing constructive feedback to help candidates grow.", prompt, false)
	if err != nil {
		return "", fmt.Errorf("failed to generate final feedback: %w", err)
	}
	return content, nil
}

// TranscribeAudio uploads an audio recording to the transcription endpoint
// and returns the recognized text.
func (p *OpenAIProvider) TranscribeAudio(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, audio).
		SetFormData(map[string]string{"model": p.transcriptionModel}).
		Post("/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	if resp.IsError() {
		apiMsg := gjson.GetBytes(resp.Body(), "error.message").String()
		log.Printf("[AI] Transcription returned status %d: %s", resp.StatusCode(), apiMsg)
		return "", fmt.Errorf("transcription returned status %d", resp.StatusCode())
	}

	text := gjson.GetBytes(resp.Body(), "text").String()
	if text == "" {
		return "", fmt.Errorf("transcription returned empty text")
	}
	return text, nil
}

// clampScore bounds a model-reported score to [0, max].
func clampScore(v float64, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func fallbackFeedback(s string) string {
	if s == "" {
		return defaultFeedback
	}
	return s
}

func stringSlice(v gjson.Result) []string {
	if !v.IsArray() {
		return []string{}
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}
