package repository

import (
	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	Count() (int64, error)
}
