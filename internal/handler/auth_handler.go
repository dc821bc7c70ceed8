package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/assessment-api/internal/handler/dto"
	"github.com/yourusername/assessment-api/internal/service"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
}

// Register creates a candidate account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		handleServiceError(c, "AuthHandler.Register", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		handleServiceError(c, "AuthHandler.Login", err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		handleServiceError(c, "AuthHandler.Me", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
