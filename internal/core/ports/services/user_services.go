package services

import (
	"context"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
}

// UserWriterSvc defines self-service account operations
type UserWriterSvc interface {
	// Register creates an unapproved account.
	Register(ctx context.Context, req dto.SignupRequest) (*domain.User, error)

	// EnsureAdmin creates an approved admin account when the email is unknown.
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error)
}

// UserAdminSvc defines account administration, reserved to admins
type UserAdminSvc interface {
	ApproveUser(ctx context.Context, userID string, admin domain.Actor) (*domain.User, error)
	SetRole(ctx context.Context, userID string, role domain.Role, admin domain.Actor) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string, admin domain.Actor) error
	ListAdminAudit(ctx context.Context, limit int, admin domain.Actor) ([]domain.AdminAuditEntry, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser checks credentials and returns the account.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAdminSvc
	UserAuthSvc
}
