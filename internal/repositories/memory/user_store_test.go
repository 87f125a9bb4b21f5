package memory

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	now := time.Now().UTC()

	user := domain.User{UserID: "u-1", Email: "Caissier@Example.org", Role: domain.RoleDepositSubmitter}
	user.CreatedAt = now
	require.NoError(t, store.SaveUser(ctx, user))

	err := store.SaveUser(ctx, domain.User{UserID: "u-2", Email: "caissier@example.org"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate, "emails are unique regardless of case")

	found, err := store.FindUserByEmail(ctx, "caissier@example.org")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.UserID)

	found.Approved = true
	found.Role = domain.RoleDecider
	require.NoError(t, store.UpdateUser(ctx, *found))

	reloaded, err := store.FindUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, reloaded.Approved)
	assert.Equal(t, domain.RoleDecider, reloaded.Role)

	require.NoError(t, store.MarkUserDeleted(ctx, "u-1", now, "admin"))
	_, err = store.FindUserByID(ctx, "u-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	err = store.MarkUserDeleted(ctx, "u-1", now, "admin")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	users, err := store.FindUsers(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserStore_AdminAuditNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	base := time.Now().UTC()

	require.NoError(t, store.AppendAdminAudit(ctx, domain.AdminAuditEntry{ID: "a-1", Timestamp: base, Action: domain.AdminActionApproveUser}))
	require.NoError(t, store.AppendAdminAudit(ctx, domain.AdminAuditEntry{ID: "a-2", Timestamp: base.Add(time.Second), Action: domain.AdminActionSetRole}))

	entries, err := store.ListAdminAudit(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a-2", entries[0].ID)
}
