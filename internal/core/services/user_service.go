package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	"github.com/google/uuid"
)

const (
	minPasswordLength    = 8
	defaultAdminAuditMax = 100
	maxAdminAuditLimit   = 500
)

// userService implements portssvc.UserSvcFacade.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// Register creates an unapproved account. ADMIN cannot be self-assigned.
func (s *userService) Register(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleDepositSubmitter
	}
	if !role.Valid() || role == domain.RoleAdmin {
		return nil, fmt.Errorf("%w: role %q cannot be requested at signup", apperrors.ErrValidation, role)
	}
	user, err := s.newUser(req.Name, req.Email, req.Password, role, false)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveUser(ctx, *user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, err, "Email already registered", slog.String("email", user.Email))
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to save user", slog.String("email", user.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return user, nil
}

// EnsureAdmin creates an approved admin when the email is unknown and returns the existing account otherwise.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	existing, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	user, err := s.newUser("Administrator", email, password, domain.RoleAdmin, true)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	s.LogInfo(ctx, "Bootstrap admin created", slog.String("user_id", user.UserID))
	return user, nil
}

func (s *userService) newUser(name, email, password string, role domain.Role, approved bool) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", apperrors.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	id := uuid.NewString()
	return &domain.User{
		UserID:       id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Approved:     approved,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     id,
			LastUpdatedAt: now,
			LastUpdatedBy: id,
		},
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to get user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// AuthenticateUser checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogWarn(ctx, apperrors.ErrUnauthorized, "Password mismatch", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	return user, nil
}

func (s *userService) ApproveUser(ctx context.Context, userID string, admin domain.Actor) (*domain.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Approved = true
	if err := s.saveAndAudit(ctx, user, admin, domain.AdminActionApproveUser, map[string]any{"userId": userID}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SetRole(ctx context.Context, userID string, role domain.Role, admin domain.Actor) (*domain.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	payload := map[string]any{"userId": userID, "role": string(role)}
	if err := s.saveAndAudit(ctx, user, admin, domain.AdminActionSetRole, payload); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string, admin domain.Actor) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if userID == admin.ID {
		return fmt.Errorf("%w: an admin cannot delete their own account", apperrors.ErrValidation)
	}
	now := time.Now().UTC()
	if err := s.userRepo.MarkUserDeleted(ctx, userID, now, admin.ID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		}
		return err
	}
	s.appendAudit(ctx, admin, domain.AdminActionDeleteUser, map[string]any{"userId": userID}, now)
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID), slog.String("admin_id", admin.ID))
	return nil
}

func (s *userService) ListAdminAudit(ctx context.Context, limit int, admin domain.Actor) ([]domain.AdminAuditEntry, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultAdminAuditMax
	case limit > maxAdminAuditLimit:
		limit = maxAdminAuditLimit
	}
	entries, err := s.userRepo.ListAdminAudit(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list admin audit")
		return nil, fmt.Errorf("failed to list admin audit: %w", err)
	}
	return entries, nil
}

func (s *userService) saveAndAudit(ctx context.Context, user *domain.User, admin domain.Actor, action string, payload map[string]any) error {
	now := time.Now().UTC()
	user.LastUpdatedAt = now
	user.LastUpdatedBy = admin.ID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", user.UserID), slog.String("action", action))
		return fmt.Errorf("failed to update user: %w", err)
	}
	s.appendAudit(ctx, admin, action, payload, now)
	s.LogInfo(ctx, "User updated by admin", slog.String("user_id", user.UserID), slog.String("action", action))
	return nil
}

// appendAudit records an admin action. A failure is logged; the action itself already happened.
func (s *userService) appendAudit(ctx context.Context, admin domain.Actor, action string, payload map[string]any, at time.Time) {
	entry := domain.AdminAuditEntry{
		ID:        uuid.NewString(),
		Timestamp: at,
		ActorID:   admin.ID,
		Action:    action,
		Payload:   payload,
	}
	if err := s.userRepo.AppendAdminAudit(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to append admin audit", slog.String("action", action))
	}
}

func requireAdmin(actor domain.Actor) error {
	if !actor.Approved || !actor.IsAdmin() {
		return fmt.Errorf("%w: admin privilege required", apperrors.ErrForbidden)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
