package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/core/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
	admin        domain.Actor
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
	suite.admin = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Approved: true}
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

// --- Register Tests ---
func (suite *UserServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := dto.SignupRequest{Name: "Amani", Email: "  Amani@Example.COM ", Password: "password123"}

	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Email == "amani@example.com" &&
			user.Role == domain.RoleDepositSubmitter &&
			!user.Approved &&
			user.PasswordHash != "password123"
	})).Return(nil).Once()

	user, err := suite.service.Register(ctx, req)

	suite.Require().NoError(err)
	suite.NotEmpty(user.UserID)
	suite.True(utils.CheckPasswordHash("password123", user.PasswordHash))
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegister_RequestedRole() {
	ctx := context.Background()
	req := dto.SignupRequest{Name: "Bisimwa", Email: "b@example.com", Password: "password123", Role: domain.RoleWithdrawalSubmitter}

	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(nil).Once()

	user, err := suite.service.Register(ctx, req)
	suite.Require().NoError(err)
	suite.Equal(domain.RoleWithdrawalSubmitter, user.Role)
}

func (suite *UserServiceTestSuite) TestRegister_AdminRefused() {
	req := dto.SignupRequest{Name: "Eve", Email: "eve@example.com", Password: "password123", Role: domain.RoleAdmin}

	_, err := suite.service.Register(context.Background(), req)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestRegister_ShortPassword() {
	_, err := suite.service.Register(context.Background(), dto.SignupRequest{Name: "A", Email: "a@example.com", Password: "short"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestRegister_DuplicateEmail() {
	ctx := context.Background()
	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.Register(ctx, dto.SignupRequest{Name: "A", Email: "a@example.com", Password: "password123"})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestRegister_SaveError() {
	ctx := context.Background()
	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(assert.AnError).Once()

	user, err := suite.service.Register(ctx, dto.SignupRequest{Name: "A", Email: "a@example.com", Password: "password123"})
	suite.Require().Error(err)
	suite.Nil(user)
	suite.Contains(err.Error(), assert.AnError.Error())
}

// --- AuthenticateUser Tests ---
func (suite *UserServiceTestSuite) TestAuthenticateUser() {
	ctx := context.Background()
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	stored := &domain.User{UserID: "u-1", Email: "a@example.com", PasswordHash: hash, Role: domain.RoleDecider, Approved: true}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "a@example.com").Return(stored, nil)
	suite.mockUserRepo.On("FindUserByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	user, err := suite.service.AuthenticateUser(ctx, "A@example.com", "password123")
	suite.Require().NoError(err)
	suite.Equal("u-1", user.UserID)

	_, err = suite.service.AuthenticateUser(ctx, "a@example.com", "wrong-password")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.AuthenticateUser(ctx, "ghost@example.com", "password123")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

// --- Admin Tests ---
func (suite *UserServiceTestSuite) TestApproveUser() {
	ctx := context.Background()
	pending := &domain.User{UserID: "u-2", Role: domain.RoleDepositSubmitter}

	suite.mockUserRepo.On("FindUserByID", ctx, "u-2").Return(pending, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == "u-2" && u.Approved && u.LastUpdatedBy == "admin-1"
	})).Return(nil).Once()
	suite.mockUserRepo.On("AppendAdminAudit", ctx, mock.MatchedBy(func(e domain.AdminAuditEntry) bool {
		return e.Action == domain.AdminActionApproveUser && e.ActorID == "admin-1" && e.Payload["userId"] == "u-2"
	})).Return(nil).Once()

	user, err := suite.service.ApproveUser(ctx, "u-2", suite.admin)

	suite.Require().NoError(err)
	suite.True(user.Approved)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAdminActions_RequireAdmin() {
	ctx := context.Background()
	manager := domain.Actor{ID: "m-1", Role: domain.RoleDecider, Approved: true}

	_, err := suite.service.ApproveUser(ctx, "u-2", manager)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	_, err = suite.service.SetRole(ctx, "u-2", domain.RoleDecider, manager)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.ErrorIs(suite.service.DeleteUser(ctx, "u-2", manager), apperrors.ErrForbidden)
	_, err = suite.service.ListAdminAudit(ctx, 10, manager)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestSetRole() {
	ctx := context.Background()
	user := &domain.User{UserID: "u-3", Role: domain.RoleDepositSubmitter, Approved: true}

	_, err := suite.service.SetRole(ctx, "u-3", "CAISSIER", suite.admin)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockUserRepo.On("FindUserByID", ctx, "u-3").Return(user, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.AnythingOfType("domain.User")).Return(nil).Once()
	suite.mockUserRepo.On("AppendAdminAudit", ctx, mock.MatchedBy(func(e domain.AdminAuditEntry) bool {
		return e.Action == domain.AdminActionSetRole && e.Payload["role"] == "MANAGER"
	})).Return(nil).Once()

	updated, err := suite.service.SetRole(ctx, "u-3", domain.RoleDecider, suite.admin)
	suite.Require().NoError(err)
	suite.Equal(domain.RoleDecider, updated.Role)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestDeleteUser() {
	ctx := context.Background()

	suite.ErrorIs(suite.service.DeleteUser(ctx, suite.admin.ID, suite.admin), apperrors.ErrValidation)

	suite.mockUserRepo.On("MarkUserDeleted", ctx, "u-4", mock.AnythingOfType("time.Time"), "admin-1").Return(nil).Once()
	suite.mockUserRepo.On("AppendAdminAudit", ctx, mock.MatchedBy(func(e domain.AdminAuditEntry) bool {
		return e.Action == domain.AdminActionDeleteUser
	})).Return(nil).Once()
	suite.NoError(suite.service.DeleteUser(ctx, "u-4", suite.admin))

	suite.mockUserRepo.On("MarkUserDeleted", ctx, "u-5", mock.AnythingOfType("time.Time"), "admin-1").
		Return(apperrors.NewNotFoundError("user u-5 not found for delete")).Once()
	suite.ErrorIs(suite.service.DeleteUser(ctx, "u-5", suite.admin), apperrors.ErrNotFound)

	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestListAdminAudit_ClampsLimit() {
	ctx := context.Background()
	suite.mockUserRepo.On("ListAdminAudit", ctx, 500).Return([]domain.AdminAuditEntry{{ID: "a-1"}}, nil).Once()
	suite.mockUserRepo.On("ListAdminAudit", ctx, 100).Return([]domain.AdminAuditEntry{}, nil).Once()

	entries, err := suite.service.ListAdminAudit(ctx, 10000, suite.admin)
	suite.Require().NoError(err)
	suite.Len(entries, 1)

	_, err = suite.service.ListAdminAudit(ctx, 0, suite.admin)
	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- EnsureAdmin Tests ---
func (suite *UserServiceTestSuite) TestEnsureAdmin() {
	ctx := context.Background()
	existing := &domain.User{UserID: "admin-0", Role: domain.RoleAdmin, Approved: true}

	suite.mockUserRepo.On("FindUserByEmail", ctx, "root@example.com").Return(existing, nil).Once()
	user, err := suite.service.EnsureAdmin(ctx, "root@example.com", "password123")
	suite.Require().NoError(err)
	suite.Equal("admin-0", user.UserID)

	suite.mockUserRepo.On("FindUserByEmail", ctx, "new@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleAdmin && u.Approved
	})).Return(nil).Once()
	user, err = suite.service.EnsureAdmin(ctx, "new@example.com", "password123")
	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, user.Role)

	suite.mockUserRepo.AssertExpectations(suite.T())
}
