package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/handler/dto"
	"github.com/yourusername/assessment-api/internal/service"
)

// AssessmentHandler handles assessment and question bank requests.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	statsService      *service.StatsService
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(assessmentService *service.AssessmentService, statsService *service.StatsService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		statsService:      statsService,
	}
}

// ListActive returns assessments open to candidates.
func (h *AssessmentHandler) ListActive(c *gin.Context) {
	assessments, err := h.assessmentService.ListActiveAssessments()
	if err != nil {
		handleServiceError(c, "AssessmentHandler.ListActive", err)
		return
	}

	out := make([]*dto.AssessmentResponse, 0, len(assessments))
	for i := range assessments {
		out = append(out, dto.NewAssessmentResponse(&assessments[i], false))
	}
	c.JSON(http.StatusOK, out)
}

// List returns all assessments with pagination (admin).
func (h *AssessmentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	assessments, total, err := h.assessmentService.ListAssessments(page, perPage)
	if err != nil {
		handleServiceError(c, "AssessmentHandler.List", err)
		return
	}

	out := make([]*dto.AssessmentResponse, 0, len(assessments))
	for i := range assessments {
		out = append(out, dto.NewAssessmentResponse(&assessments[i], false))
	}
	c.JSON(http.StatusOK, dto.PaginatedAssessmentResponse{
		Assessments: out,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
	})
}

// Get returns one assessment with its questions. Correct MCQ answers are
// never serialized.
func (h *AssessmentHandler) Get(c *gin.Context) {
	assessmentID := c.MustGet("assessmentID").(uint)

	assessment, err := h.assessmentService.GetAssessmentWithQuestions(assessmentID)
	if err != nil {
		handleServiceError(c, "AssessmentHandler.Get", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAssessmentResponse(assessment, true))
}

// GetQuestions returns the assessment's question bank in order.
func (h *AssessmentHandler) GetQuestions(c *gin.Context) {
	assessmentID := c.MustGet("assessmentID").(uint)

	assessment, err := h.assessmentService.GetAssessmentWithQuestions(assessmentID)
	if err != nil {
		handleServiceError(c, "AssessmentHandler.GetQuestions", err)
		return
	}

	out := make([]dto.QuestionResponse, 0, len(assessment.Questions))
	for i := range assessment.Questions {
		out = append(out, dto.NewQuestionResponse(&assessment.Questions[i]))
	}
	c.JSON(http.StatusOK, out)
}

// CreateAssessmentRequest is the admin payload for a new assessment.
type CreateAssessmentRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Category    string `json:"category" binding:"omitempty,max=100"`
	Difficulty  string `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	Duration    int    `json:"duration" binding:"required,min=1,max=480"` // minutes
	HasVoice    bool   `json:"has_voice"`
}

// Create creates an assessment shell (admin).
func (h *AssessmentHandler) Create(c *gin.Context) {
	var req CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assessment := &entity.Assessment{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Duration:    req.Duration,
		HasVoice:    req.HasVoice,
		IsActive:    true,
	}
	if err := h.assessmentService.CreateAssessment(assessment); err != nil {
		handleServiceError(c, "AssessmentHandler.Create", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAssessmentResponse(assessment, false))
}

// GenerateQuestionsRequest overrides the default per-type counts.
type GenerateQuestionsRequest struct {
	MCQCount        int `json:"mcq_count" binding:"omitempty,min=1,max=50"`
	SubjectiveCount int `json:"subjective_count" binding:"omitempty,min=1,max=20"`
	VoiceCount      int `json:"voice_count" binding:"omitempty,min=1,max=10"`
}

// GenerateQuestions asks the AI provider to build the question bank (admin).
func (h *AssessmentHandler) GenerateQuestions(c *gin.Context) {
	assessmentID := c.MustGet("assessmentID").(uint)

	var req GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions, err := h.assessmentService.GenerateQuestions(c.Request.Context(), assessmentID, service.GenerateOptions{
		MCQCount:        req.MCQCount,
		SubjectiveCount: req.SubjectiveCount,
		VoiceCount:      req.VoiceCount,
	})
	if err != nil {
		handleServiceError(c, "AssessmentHandler.GenerateQuestions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Questions generated successfully",
		"questions": len(questions),
	})
}

// ExportResults streams an xlsx of completed sessions (admin).
func (h *AssessmentHandler) ExportResults(c *gin.Context) {
	assessmentID := c.MustGet("assessmentID").(uint)

	file, err := h.statsService.ExportAssessmentResults(assessmentID)
	if err != nil {
		handleServiceError(c, "AssessmentHandler.ExportResults", err)
		return
	}

	filename := fmt.Sprintf("assessment_%d_results.xlsx", assessmentID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		handleServiceError(c, "AssessmentHandler.ExportResults", err)
	}
}
