package handler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/assessment-api/internal/handler/dto"
	"github.com/yourusername/assessment-api/internal/service"
)

// Voice recordings above this size are rejected before transcription.
const maxAudioBytes = 25 << 20

// SessionHandler handles session lifecycle, responses and transcription.
type SessionHandler struct {
	sessionService *service.SessionService
	gradingService *service.GradingService
	scoreService   *service.ScoreService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(
	sessionService *service.SessionService,
	gradingService *service.GradingService,
	scoreService *service.ScoreService,
) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		gradingService: gradingService,
		scoreService:   scoreService,
	}
}

// StartSessionRequest names the assessment to start.
type StartSessionRequest struct {
	AssessmentID uint `json:"assessment_id" binding:"required"`
}

// Start returns the caller's active session for the assessment, creating one
// when absent.
func (h *SessionHandler) Start(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.StartSession(userID, req.AssessmentID)
	if err != nil {
		handleServiceError(c, "SessionHandler.Start", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// Get returns one session.
func (h *SessionHandler) Get(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	isAdmin := c.GetBool("is_admin")
	sessionID := c.MustGet("sessionID").(uint)

	session, err := h.sessionService.GetSession(sessionID, userID, isAdmin)
	if err != nil {
		handleServiceError(c, "SessionHandler.Get", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// UpdateSessionRequest carries a progress update.
type UpdateSessionRequest struct {
	CurrentQuestionIndex *int   `json:"current_question_index" binding:"omitempty,min=0"`
	TimeRemaining        *int   `json:"time_remaining" binding:"omitempty,min=0"`
	Status               string `json:"status" binding:"omitempty,oneof=in_progress paused"`
}

// Update persists the candidate's position and remaining time.
func (h *SessionHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Missing fields keep their current values.
	current, err := h.sessionService.GetSession(sessionID, userID, false)
	if err != nil {
		handleServiceError(c, "SessionHandler.Update", err)
		return
	}
	questionIndex := current.CurrentQuestionIndex
	if req.CurrentQuestionIndex != nil {
		questionIndex = *req.CurrentQuestionIndex
	}
	timeRemaining := current.TimeRemaining
	if req.TimeRemaining != nil {
		timeRemaining = *req.TimeRemaining
	}

	session, err := h.sessionService.UpdateProgress(sessionID, userID, questionIndex, timeRemaining, req.Status)
	if err != nil {
		handleServiceError(c, "SessionHandler.Update", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// SubmitResponseRequest carries one answer.
type SubmitResponseRequest struct {
	SessionID     uint   `json:"session_id" binding:"required"`
	QuestionID    uint   `json:"question_id" binding:"required"`
	Answer        string `json:"answer" binding:"omitempty,max=20000"`
	AudioURL      string `json:"audio_url" binding:"omitempty,max=255"`
	Transcription string `json:"transcription" binding:"omitempty,max=20000"`
}

// SubmitResponse grades and records one answer.
func (h *SessionHandler) SubmitResponse(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.gradingService.SubmitResponse(c.Request.Context(), userID, service.SubmitResponseInput{
		SessionID:     req.SessionID,
		QuestionID:    req.QuestionID,
		Answer:        req.Answer,
		AudioURL:      req.AudioURL,
		Transcription: req.Transcription,
	})
	if err != nil {
		handleServiceError(c, "SessionHandler.SubmitResponse", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResponseResponse(response))
}

// Transcribe accepts a multipart audio upload and returns the recognized text.
func (h *SessionHandler) Transcribe(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file provided"})
		return
	}
	if fileHeader.Size > maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleServiceError(c, "SessionHandler.Transcribe", err)
		return
	}
	defer file.Close()

	// Hash first so a retried upload of the same recording hits the cache.
	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		handleServiceError(c, "SessionHandler.Transcribe", err)
		return
	}
	if len(audio) > maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio file too large"})
		return
	}
	sum := sha256.Sum256(audio)
	checksum := hex.EncodeToString(sum[:])

	transcription, err := h.gradingService.Transcribe(c.Request.Context(), userID,
		fileHeader.Filename, bytes.NewReader(audio), checksum)
	if err != nil {
		handleServiceError(c, "SessionHandler.Transcribe", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcription": transcription})
}

// Complete finalizes a session: aggregation, feedback and status change.
func (h *SessionHandler) Complete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	session, err := h.scoreService.CompleteSession(c.Request.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(c, "SessionHandler.Complete", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// ListMine returns the caller's session history, newest first.
func (h *SessionHandler) ListMine(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	sessions, err := h.sessionService.ListUserSessions(userID)
	if err != nil {
		handleServiceError(c, "SessionHandler.ListMine", err)
		return
	}

	out := make([]*dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, dto.NewSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}
