package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
	Tx *MockLedgerTx
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Tx)
}

func (m *MockLedgerRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	args := m.Called(ctx, operationID)
	var op *domain.Operation
	if args.Get(0) != nil {
		op = args.Get(0).(*domain.Operation)
	}
	return op, args.Error(1)
}

func (m *MockLedgerRepository) SearchOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.Operation, int, error) {
	args := m.Called(ctx, filter)
	var ops []domain.Operation
	if args.Get(0) != nil {
		ops = args.Get(0).([]domain.Operation)
	}
	return ops, args.Int(1), args.Error(2)
}

func (m *MockLedgerRepository) ApprovedTotals(ctx context.Context, currency domain.Currency) (domain.CurrencyTotals, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(domain.CurrencyTotals), args.Error(1)
}

func (m *MockLedgerRepository) ApprovedTotalsByCurrency(ctx context.Context) ([]domain.CurrencyTotals, error) {
	args := m.Called(ctx)
	var rows []domain.CurrencyTotals
	if args.Get(0) != nil {
		rows = args.Get(0).([]domain.CurrencyTotals)
	}
	return rows, args.Error(1)
}

func (m *MockLedgerRepository) DailyApprovedFlows(ctx context.Context, since time.Time, currencies []domain.Currency) ([]domain.DailyFlow, error) {
	args := m.Called(ctx, since, currencies)
	var rows []domain.DailyFlow
	if args.Get(0) != nil {
		rows = args.Get(0).([]domain.DailyFlow)
	}
	return rows, args.Error(1)
}

func (m *MockLedgerRepository) TopBeneficiaries(ctx context.Context, limit int) ([]domain.BeneficiaryTotal, error) {
	args := m.Called(ctx, limit)
	var rows []domain.BeneficiaryTotal
	if args.Get(0) != nil {
		rows = args.Get(0).([]domain.BeneficiaryTotal)
	}
	return rows, args.Error(1)
}

func (m *MockLedgerRepository) ListHistory(ctx context.Context, filter domain.HistoryFilter, limit int, nextToken *string) ([]domain.HistoryEntry, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var entries []domain.HistoryEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.HistoryEntry)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return entries, next, args.Error(2)
}

func (m *MockLedgerRepository) ListHistoryForCurrency(ctx context.Context, currency domain.Currency) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, currency)
	var entries []domain.HistoryEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.HistoryEntry)
	}
	return entries, args.Error(1)
}

// --- Mock LedgerTx ---
type MockLedgerTx struct {
	mock.Mock
}

var _ portsrepo.LedgerTx = (*MockLedgerTx)(nil)

func (m *MockLedgerTx) FindOperationForUpdate(ctx context.Context, operationID string) (*domain.Operation, error) {
	args := m.Called(ctx, operationID)
	var op *domain.Operation
	if args.Get(0) != nil {
		op = args.Get(0).(*domain.Operation)
	}
	return op, args.Error(1)
}

func (m *MockLedgerTx) LockCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockLedgerTx) ApprovedTotals(ctx context.Context, currency domain.Currency) (domain.CurrencyTotals, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(domain.CurrencyTotals), args.Error(1)
}

func (m *MockLedgerTx) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerTx) InsertOperation(ctx context.Context, op domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockLedgerTx) UpdateOperationIfSubmitted(ctx context.Context, op domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockLedgerTx) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

func (m *MockUserRepository) AppendAdminAudit(ctx context.Context, entry domain.AdminAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockUserRepository) ListAdminAudit(ctx context.Context, limit int) ([]domain.AdminAuditEntry, error) {
	args := m.Called(ctx, limit)
	var entries []domain.AdminAuditEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.AdminAuditEntry)
	}
	return entries, args.Error(1)
}
