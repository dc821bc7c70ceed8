package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/yourusername/assessment-api/internal/ai"
	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// SubmitResponseInput carries one answer to one question.
type SubmitResponseInput struct {
	SessionID     uint
	QuestionID    uint
	Answer        string
	AudioURL      string
	Transcription string
}

// GradingService grades individual responses as they are submitted.
type GradingService struct {
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
	responseRepo repository.ResponseRepository
	cacheRepo    repository.CacheRepository
	aiProvider   ai.Provider
}

// NewGradingService creates a new grading service.
func NewGradingService(
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	cacheRepo repository.CacheRepository,
	aiProvider ai.Provider,
) *GradingService {
	return &GradingService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		cacheRepo:    cacheRepo,
		aiProvider:   aiProvider,
	}
}

// SubmitResponse grades and records one answer. MCQ answers grade locally by
// exact option match; subjective and voice answers go to the evaluator, and
// the earned score is the question's points scaled by the evaluator's 0-100
// overall. A duplicate submission for the same question returns ErrConflict.
func (s *GradingService) SubmitResponse(ctx context.Context, requesterID uint, in SubmitResponseInput) (*entity.Response, error) {
	session, err := s.sessionRepo.GetByID(in.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOwnedBy(requesterID) {
		return nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("%w: session is not accepting answers", apperrors.ErrConflict)
	}

	question, err := s.questionRepo.GetByID(in.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.AssessmentID != session.AssessmentID {
		return nil, fmt.Errorf("%w: question does not belong to this assessment", apperrors.ErrValidation)
	}

	response := &entity.Response{
		SessionID:     in.SessionID,
		QuestionID:    in.QuestionID,
		Answer:        in.Answer,
		AudioURL:      in.AudioURL,
		Transcription: in.Transcription,
		AnsweredAt:    time.Now(),
	}

	switch question.Type {
	case entity.QuestionTypeMCQ:
		if in.Answer == "" {
			return nil, fmt.Errorf("%w: answer is required for mcq questions", apperrors.ErrValidation)
		}
		response.Score = question.Grade(in.Answer)
		response.Evaluation = entity.MCQEvaluation(question.IsCorrect(in.Answer))

	case entity.QuestionTypeSubjective:
		if in.Answer == "" {
			return nil, fmt.Errorf("%w: answer is required for subjective questions", apperrors.ErrValidation)
		}
		eval, err := s.aiProvider.EvaluateSubjectiveAnswer(ctx, question.Text, in.Answer, question.Rubric)
		if err != nil {
			log.Printf("[GradingService] Subjective evaluation failed for session #%d question #%d: %v", in.SessionID, in.QuestionID, err)
			return nil, err
		}
		eval.Score = clampPercent(eval.Score)
		response.Score = eval.Score / 100 * float64(question.Points)
		response.Evaluation = entity.Evaluation{
			Kind:         entity.QuestionTypeSubjective,
			Score:        &eval.Score,
			Feedback:     eval.Feedback,
			Strengths:    entity.StringArray(eval.Strengths),
			Improvements: entity.StringArray(eval.Improvements),
			Relevance:    &eval.Relevance,
			Clarity:      &eval.Clarity,
			Depth:        &eval.Depth,
		}

	case entity.QuestionTypeVoice:
		if in.Transcription == "" {
			return nil, fmt.Errorf("%w: transcription is required for voice questions", apperrors.ErrValidation)
		}
		eval, err := s.aiProvider.EvaluateVoiceResponse(ctx, question.Text, in.Transcription, question.Rubric)
		if err != nil {
			log.Printf("[GradingService] Voice evaluation failed for session #%d question #%d: %v", in.SessionID, in.QuestionID, err)
			return nil, err
		}
		eval.Score = clampPercent(eval.Score)
		response.Score = eval.Score / 100 * float64(question.Points)
		response.Evaluation = entity.Evaluation{
			Kind:          entity.QuestionTypeVoice,
			Score:         &eval.Score,
			Feedback:      eval.Feedback,
			Communication: &eval.Communication,
			Confidence:    &eval.Confidence,
			Clarity:       &eval.Clarity,
			Content:       &eval.Content,
		}

	default:
		return nil, fmt.Errorf("%w: unknown question type %q", apperrors.ErrValidation, question.Type)
	}

	if err := s.responseRepo.Create(response); err != nil {
		if errors.Is(err, repository.ErrResponseAlreadyExists) {
			return nil, fmt.Errorf("%w: question already answered in this session", apperrors.ErrConflict)
		}
		log.Printf("[GradingService] Failed to save response for session #%d question #%d: %v", in.SessionID, in.QuestionID, err)
		return nil, err
	}

	log.Printf("[GradingService] Recorded response for session #%d question #%d (type=%s, score=%.2f)",
		in.SessionID, in.QuestionID, question.Type, response.Score)
	return response, nil
}

// clampPercent bounds an evaluator overall score to [0, 100]. The provider
// clamps on parse; this keeps the invariant even for a provider that does not.
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Transcribe converts an uploaded audio recording into text. The result is
// cached briefly so a retried upload does not pay for a second transcription.
func (s *GradingService) Transcribe(ctx context.Context, requesterID uint, filename string, audio io.Reader, checksum string) (string, error) {
	if checksum != "" {
		cacheKey := fmt.Sprintf("transcription:%s", checksum)
		if cached, err := s.cacheRepo.Get(cacheKey); err == nil && cached != "" {
			log.Printf("[GradingService] Transcription cache hit for user #%d", requesterID)
			return cached, nil
		}
	}

	text, err := s.aiProvider.TranscribeAudio(ctx, filename, audio)
	if err != nil {
		log.Printf("[GradingService] Transcription failed for user #%d: %v", requesterID, err)
		return "", err
	}

	if checksum != "" {
		cacheKey := fmt.Sprintf("transcription:%s", checksum)
		if err := s.cacheRepo.Set(cacheKey, text, 10*time.Minute); err != nil {
			log.Printf("[GradingService] Warning: failed to cache transcription: %v", err)
		}
	}
	return text, nil
}
