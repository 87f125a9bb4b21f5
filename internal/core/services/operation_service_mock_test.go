package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func newMockLedger() (*MockLedgerRepository, *MockLedgerTx) {
	tx := new(MockLedgerTx)
	return &MockLedgerRepository{Tx: tx}, tx
}

func TestCreateOperation_RetriesWholeUnitOnInsertCollision(t *testing.T) {
	repo, tx := newMockLedger()
	ctx := context.Background()
	actor := domain.Actor{ID: "u-1", Role: domain.RoleDepositSubmitter, Approved: true}

	repo.On("WithinTx", mock.Anything).Return(nil).Times(2)
	tx.On("ReferenceExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Times(2)
	tx.On("InsertOperation", mock.Anything, mock.AnythingOfType("domain.Operation")).Return(apperrors.ErrDuplicate).Once()
	tx.On("InsertOperation", mock.Anything, mock.AnythingOfType("domain.Operation")).Return(nil).Once()
	tx.On("AppendHistory", mock.Anything, mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.Action == "ADD_VERSEMENT" && e.AmountMinor == 100
	})).Return(nil).Once()

	svc := services.NewOperationService(repo)
	op, err := svc.CreateOperation(ctx, domain.OperationDraft{
		Kind: domain.Deposit, Currency: domain.USD, AmountMinor: 100, ValueDate: fixedDay,
	}, actor)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, op.Status)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestCreateOperation_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo, tx := newMockLedger()
	actor := domain.Actor{ID: "u-1", Role: domain.RoleDepositSubmitter, Approved: true}

	repo.On("WithinTx", mock.Anything).Return(nil)
	tx.On("ReferenceExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	tx.On("InsertOperation", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate)

	svc := services.NewOperationService(repo)
	_, err := svc.CreateOperation(context.Background(), domain.OperationDraft{
		Kind: domain.Deposit, Currency: domain.USD, AmountMinor: 100, ValueDate: fixedDay,
	}, actor)

	assert.ErrorIs(t, err, apperrors.ErrInternal)
	tx.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
}

func TestCreateOperation_AdvisoryReadFailure(t *testing.T) {
	repo, _ := newMockLedger()
	actor := domain.Actor{ID: "u-1", Role: domain.RoleWithdrawalSubmitter, Approved: true}
	repo.On("ApprovedTotals", mock.Anything, domain.USD).Return(domain.CurrencyTotals{}, assert.AnError)

	svc := services.NewOperationService(repo)
	_, err := svc.CreateOperation(context.Background(), domain.OperationDraft{
		Kind: domain.Withdrawal, Currency: domain.USD, AmountMinor: 100, ValueDate: fixedDay,
	}, actor)

	assert.ErrorIs(t, err, assert.AnError)
	repo.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestDecideOperation_LocksOperationThenCurrency(t *testing.T) {
	repo, tx := newMockLedger()
	manager := domain.Actor{ID: "m-1", Role: domain.RoleDecider, Approved: true}
	op := &domain.Operation{ID: "op-1", Kind: domain.Withdrawal, Currency: domain.USD, AmountMinor: 500, Status: domain.StatusSubmitted, Reference: "RET-20250601-ABCDEF"}

	var order []string
	repo.On("WithinTx", mock.Anything).Return(nil)
	tx.On("FindOperationForUpdate", mock.Anything, "op-1").Return(op, nil).Run(func(mock.Arguments) { order = append(order, "operation") })
	tx.On("LockCurrency", mock.Anything, domain.USD).Return(nil).Run(func(mock.Arguments) { order = append(order, "currency") })
	tx.On("ApprovedTotals", mock.Anything, domain.USD).Return(domain.CurrencyTotals{Currency: domain.USD, InSum: 800, OutSum: 400}, nil)

	svc := services.NewOperationService(repo)
	_, err := svc.DecideOperation(context.Background(), "op-1", domain.StatusApproved, manager)

	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.Equal(t, []string{"operation", "currency"}, order)
	tx.AssertNotCalled(t, "UpdateOperationIfSubmitted", mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
}

func TestCancelOperation_LostRaceIsNotEligible(t *testing.T) {
	repo, tx := newMockLedger()
	actor := domain.Actor{ID: "u-1", Role: domain.RoleDepositSubmitter, Approved: true}
	op := &domain.Operation{ID: "op-1", Kind: domain.Deposit, Currency: domain.CDF, AmountMinor: 10, Status: domain.StatusSubmitted, CreatedBy: "u-1"}

	repo.On("WithinTx", mock.Anything).Return(nil)
	tx.On("FindOperationForUpdate", mock.Anything, "op-1").Return(op, nil)
	tx.On("UpdateOperationIfSubmitted", mock.Anything, mock.Anything).Return(apperrors.ErrNotEligible)

	svc := services.NewOperationService(repo)
	_, err := svc.CancelOperation(context.Background(), "op-1", actor)

	assert.ErrorIs(t, err, apperrors.ErrNotEligible)
	tx.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
}
