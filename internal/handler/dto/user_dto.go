package dto

import (
	"time"

	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// UserResponse is the user profile returned to clients. The password hash
// never leaves the entity.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse builds the user DTO.
func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// LoginResponse carries the access token and the profile.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}
