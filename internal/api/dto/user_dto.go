package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// UserResponse describes a directory entry.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	AvatarURL string      `json:"avatarUrl"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}
