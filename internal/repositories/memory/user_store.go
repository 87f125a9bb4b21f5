package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
)

// UserStore keeps accounts and the admin audit trail in process memory.
type UserStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	adminAudit []domain.AdminAuditEntry
}

// NewUserStore creates an empty account store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

var _ portsrepo.UserRepositoryFacade = (*UserStore)(nil)

func (s *UserStore) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *UserStore) FindUsers(_ context.Context, limit int, offset int) ([]domain.User, error) {
	s.mu.RLock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []domain.User{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *UserStore) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; ok {
		return fmt.Errorf("%w: user %s", apperrors.ErrDuplicate, user.UserID)
	}
	for _, u := range s.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: email %s", apperrors.ErrDuplicate, user.Email)
		}
	}
	s.users[user.UserID] = user
	return nil
}

func (s *UserStore) UpdateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.UserID]
	if !ok || stored.DeletedAt != nil {
		return apperrors.NewNotFoundError("user " + user.UserID + " not found for update")
	}
	stored.Name = user.Name
	stored.Role = user.Role
	stored.Approved = user.Approved
	stored.LastUpdatedAt = user.LastUpdatedAt
	stored.LastUpdatedBy = user.LastUpdatedBy
	s.users[user.UserID] = stored
	return nil
}

func (s *UserStore) MarkUserDeleted(_ context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[userID]
	if !ok || stored.DeletedAt != nil {
		return apperrors.NewNotFoundError("user " + userID + " not found for delete")
	}
	stored.DeletedAt = &deletedAt
	stored.LastUpdatedAt = deletedAt
	stored.LastUpdatedBy = deletedBy
	s.users[userID] = stored
	return nil
}

func (s *UserStore) AppendAdminAudit(_ context.Context, entry domain.AdminAuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminAudit = append(s.adminAudit, entry)
	return nil
}

func (s *UserStore) ListAdminAudit(_ context.Context, limit int) ([]domain.AdminAuditEntry, error) {
	s.mu.RLock()
	out := make([]domain.AdminAuditEntry, len(s.adminAudit))
	copy(out, s.adminAudit)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
