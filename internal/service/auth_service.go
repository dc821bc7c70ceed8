package service

import (
	"fmt"
	"log"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
	"github.com/yourusername/assessment-api/pkg/auth"
)

// AuthService handles registration, login and profile lookups.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register creates a new candidate account. The password is hashed by the
// entity BeforeSave hook.
func (s *AuthService) Register(username, email, password, firstName, lastName string) (*entity.User, error) {
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", apperrors.ErrConflict)
	}

	user := &entity.User{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      entity.RoleCandidate,
	}
	if err := s.userRepo.Create(user); err != nil {
		log.Printf("[AuthService] Failed to create user with email %s: %v", email, err)
		return nil, err
	}

	log.Printf("[AuthService] Registered user #%d (%s)", user.ID, user.Email)
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Do not reveal whether the account exists.
		return "", nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	if !user.CheckPassword(password) {
		return "", nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		log.Printf("[AuthService] Failed to generate token for user #%d: %v", user.ID, err)
		return "", nil, err
	}

	log.Printf("[AuthService] User #%d logged in", user.ID)
	return token, user, nil
}

// GetUserByID returns the user profile.
func (s *AuthService) GetUserByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}
