package dto

import (
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// SignupRequest defines the data needed to open an account.
// Accounts start unapproved; an admin approves them later.
type SignupRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"omitempty,caisse_role"`
}

// SetRoleRequest defines the body of a role change.
type SetRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,caisse_role"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=200"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	UserID    string      `json:"userID"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Approved  bool        `json:"approved"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse converts a domain.User to its public view.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Approved:  user.Approved,
		CreatedAt: user.CreatedAt,
	}
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{
		Users: userResponses,
	}
}

// AdminAuditParams defines query parameters for the admin audit log.
type AdminAuditParams struct {
	Limit int `form:"limit,default=100" binding:"min=1,max=500"`
}

// AdminAuditResponse wraps the admin audit log, newest first.
type AdminAuditResponse struct {
	Entries []domain.AdminAuditEntry `json:"entries"`
}
