package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock OperationService ---
type MockOperationService struct {
	mock.Mock
}

func (m *MockOperationService) CreateOperation(ctx context.Context, draft domain.OperationDraft, actor domain.Actor) (*domain.Operation, error) {
	args := m.Called(ctx, draft, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}
func (m *MockOperationService) EditOperation(ctx context.Context, operationID string, patch domain.OperationPatch, actor domain.Actor) (*domain.Operation, error) {
	args := m.Called(ctx, operationID, patch, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}
func (m *MockOperationService) CancelOperation(ctx context.Context, operationID string, actor domain.Actor) (*domain.Operation, error) {
	args := m.Called(ctx, operationID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}
func (m *MockOperationService) DecideOperation(ctx context.Context, operationID string, decision domain.OperationStatus, actor domain.Actor) (*domain.Operation, error) {
	args := m.Called(ctx, operationID, decision, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}
func (m *MockOperationService) GetOperation(ctx context.Context, operationID string) (*domain.Operation, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}
func (m *MockOperationService) SearchOperations(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OperationPage), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.OperationSvcFacade = (*MockOperationService)(nil)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetBalance(ctx context.Context, currency domain.Currency) (int64, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockBalanceService) GetTotals(ctx context.Context) ([]domain.CurrencyTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyTotals), args.Error(1)
}
func (m *MockBalanceService) Reconcile(ctx context.Context, currency domain.Currency) (*domain.Reconciliation, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

var _ portssvc.BalanceSvc = (*MockBalanceService)(nil)

// --- Mock HistoryService ---
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}
func (m *MockHistoryService) Search(ctx context.Context, filter domain.HistoryFilter, limit int, nextToken *string) ([]domain.HistoryEntry, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.HistoryEntry), next, args.Error(2)
}

var _ portssvc.HistorySvc = (*MockHistoryService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) DailyFlows(ctx context.Context, days int, currencies []domain.Currency) ([]domain.DailyFlow, error) {
	args := m.Called(ctx, days, currencies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyFlow), args.Error(1)
}
func (m *MockReportingService) TopBeneficiaries(ctx context.Context, limit int) ([]domain.BeneficiaryTotal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BeneficiaryTotal), args.Error(1)
}

var _ portssvc.ReportingSvc = (*MockReportingService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserService) Register(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) ApproveUser(ctx context.Context, userID string, admin domain.Actor) (*domain.User, error) {
	args := m.Called(ctx, userID, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) SetRole(ctx context.Context, userID string, role domain.Role, admin domain.Actor) (*domain.User, error) {
	args := m.Called(ctx, userID, role, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) DeleteUser(ctx context.Context, userID string, admin domain.Actor) error {
	args := m.Called(ctx, userID, admin)
	return args.Error(0)
}
func (m *MockUserService) ListAdminAudit(ctx context.Context, limit int, admin domain.Actor) ([]domain.AdminAuditEntry, error) {
	args := m.Called(ctx, limit, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdminAuditEntry), args.Error(1)
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)
