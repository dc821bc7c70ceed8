package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/assessment-api/internal/ai"
	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// Category weights for the composite score, in percent.
const (
	weightMCQ        = 40.0
	weightSubjective = 35.0
	weightVoice      = 25.0
)

const fallbackFeedbackText = "Assessment completed successfully."

// ScoreBreakdown is the aggregated result of a finished session. Each
// category percentage is earned/possible over that category's questions;
// categories with no answered questions are marked absent. The composite
// applies the 40/35/25 weights only to present categories, without
// renormalizing, so skipping a category caps the attainable composite.
type ScoreBreakdown struct {
	MCQPercent        float64
	SubjectivePercent float64
	VoicePercent      float64

	MCQPresent        bool
	SubjectivePresent bool
	VoicePresent      bool

	Composite float64
}

// ComputeBreakdown aggregates graded responses into category percentages and
// the weighted composite. Responses whose question is missing from the map
// are skipped.
func ComputeBreakdown(responses []entity.Response, questions map[uint]*entity.Question) ScoreBreakdown {
	var mcqEarned, mcqTotal float64
	var subjEarned, subjTotal float64
	var voiceEarned, voiceTotal float64

	for _, r := range responses {
		q, ok := questions[r.QuestionID]
		if !ok {
			continue
		}
		switch q.Type {
		case entity.QuestionTypeMCQ:
			mcqEarned += r.Score
			mcqTotal += float64(q.Points)
		case entity.QuestionTypeSubjective:
			subjEarned += r.Score
			subjTotal += float64(q.Points)
		case entity.QuestionTypeVoice:
			voiceEarned += r.Score
			voiceTotal += float64(q.Points)
		}
	}

	var b ScoreBreakdown
	if mcqTotal > 0 {
		b.MCQPresent = true
		b.MCQPercent = mcqEarned / mcqTotal * 100
	}
	if subjTotal > 0 {
		b.SubjectivePresent = true
		b.SubjectivePercent = subjEarned / subjTotal * 100
	}
	if voiceTotal > 0 {
		b.VoicePresent = true
		b.VoicePercent = voiceEarned / voiceTotal * 100
	}

	if b.MCQPresent {
		b.Composite += b.MCQPercent * weightMCQ / 100
	}
	if b.SubjectivePresent {
		b.Composite += b.SubjectivePercent * weightSubjective / 100
	}
	if b.VoicePresent {
		b.Composite += b.VoicePercent * weightVoice / 100
	}
	return b
}

// feedbackOrFallback substitutes the fixed fallback text when synthesis
// failed or produced nothing, so completion never blocks on the provider.
func feedbackOrFallback(feedback string, err error) string {
	if err != nil || feedback == "" {
		return fallbackFeedbackText
	}
	return feedback
}

// ScoreService finalizes sessions: aggregates scores, synthesizes feedback
// and records the completion.
type ScoreService struct {
	sessionRepo    repository.SessionRepository
	responseRepo   repository.ResponseRepository
	questionRepo   repository.QuestionRepository
	assessmentRepo repository.AssessmentRepository
	userRepo       repository.UserRepository
	db             *gorm.DB
	aiProvider     ai.Provider
	emailService   EmailService
}

// NewScoreService creates a new score service.
func NewScoreService(
	sessionRepo repository.SessionRepository,
	responseRepo repository.ResponseRepository,
	questionRepo repository.QuestionRepository,
	assessmentRepo repository.AssessmentRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
	aiProvider ai.Provider,
	emailService EmailService,
) *ScoreService {
	return &ScoreService{
		sessionRepo:    sessionRepo,
		responseRepo:   responseRepo,
		questionRepo:   questionRepo,
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
		db:             db,
		aiProvider:     aiProvider,
		emailService:   emailService,
	}
}

// CompleteSession aggregates the session's graded responses, generates the
// narrative feedback and marks the session completed. Completing an already
// completed session returns ErrConflict. A feedback synthesis failure does
// not block completion; the session completes with a fallback message.
func (s *ScoreService) CompleteSession(ctx context.Context, sessionID, requesterID uint) (*entity.Session, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOwnedBy(requesterID) {
		return nil, fmt.Errorf("%w: session belongs to another user", apperrors.ErrForbidden)
	}
	if session.Status == entity.SessionStatusCompleted {
		return nil, fmt.Errorf("%w: session is already completed", apperrors.ErrConflict)
	}

	assessment, err := s.assessmentRepo.GetByID(session.AssessmentID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	questionList, err := s.questionRepo.GetByAssessmentID(session.AssessmentID)
	if err != nil {
		return nil, err
	}
	questions := make(map[uint]*entity.Question, len(questionList))
	for i := range questionList {
		questions[questionList[i].ID] = &questionList[i]
	}

	breakdown := ComputeBreakdown(responses, questions)

	// Feedback synthesis is isolated: a provider outage must not leave the
	// session stuck in_progress with all answers already recorded.
	feedback, ferr := s.aiProvider.GenerateFinalFeedback(ctx, assessment.Title,
		breakdown.MCQPercent, breakdown.SubjectivePercent, breakdown.VoicePercent)
	if ferr != nil || feedback == "" {
		log.Printf("[ScoreService] Feedback generation failed for session #%d, using fallback: %v", sessionID, ferr)
	}
	feedback = feedbackOrFallback(feedback, ferr)

	now := time.Now()
	updates := map[string]interface{}{
		"status":           entity.SessionStatusCompleted,
		"completed_at":     now,
		"total_score":      breakdown.Composite,
		"mcq_score":        breakdown.MCQPercent,
		"subjective_score": breakdown.SubjectivePercent,
		"voice_score":      breakdown.VoicePercent,
		"feedback":         feedback,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("PANIC recovered during CompleteSession transaction: %v", r)
		}
	}()
	if tx.Error != nil {
		log.Printf("[ScoreService] Error starting transaction for session #%d: %v", sessionID, tx.Error)
		return nil, tx.Error
	}

	// Guard the transition so two concurrent completes write the row once.
	result := tx.Model(&entity.Session{}).
		Where("id = ? AND status <> ?", sessionID, entity.SessionStatusCompleted).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		log.Printf("[ScoreService] Failed to complete session #%d: %v", sessionID, result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, fmt.Errorf("%w: session is already completed", apperrors.ErrConflict)
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("[ScoreService] Error committing completion of session #%d: %v", sessionID, err)
		return nil, err
	}

	session.Status = entity.SessionStatusCompleted
	session.CompletedAt = &now
	session.TotalScore = &breakdown.Composite
	session.MCQScore = &breakdown.MCQPercent
	session.SubjectiveScore = &breakdown.SubjectivePercent
	session.VoiceScore = &breakdown.VoicePercent
	session.Feedback = feedback

	log.Printf("[ScoreService] Completed session #%d: composite=%.2f (mcq=%.2f subjective=%.2f voice=%.2f)",
		sessionID, breakdown.Composite, breakdown.MCQPercent, breakdown.SubjectivePercent, breakdown.VoicePercent)

	s.sendCompletionEmail(ctx, session, assessment)
	return session, nil
}

// sendCompletionEmail notifies the candidate after the completion commits.
// Failures are logged only.
func (s *ScoreService) sendCompletionEmail(ctx context.Context, session *entity.Session, assessment *entity.Assessment) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		log.Printf("[ScoreService] Skipping completion email for session #%d: %v", session.ID, err)
		return
	}
	idempotencyKey := fmt.Sprintf("session-completed-%d", session.ID)
	score := 0.0
	if session.TotalScore != nil {
		score = *session.TotalScore
	}
	if err := s.emailService.SendCompletionSummary(ctx, user.Email, assessment.Title, score, idempotencyKey); err != nil {
		log.Printf("[ScoreService] Failed to send completion email for session #%d: %v", session.ID, err)
	}
}
