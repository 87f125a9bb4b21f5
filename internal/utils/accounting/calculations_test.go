package accounting_test

import (
	"testing"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/utils/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(kind domain.OperationKind, currency domain.Currency, amount int64, status domain.OperationStatus) domain.Operation {
	return domain.Operation{Kind: kind, Currency: currency, AmountMinor: amount, Status: status}
}

func TestApprovedBalance(t *testing.T) {
	ops := []domain.Operation{
		op(domain.Deposit, domain.CDF, 1000, domain.StatusApproved),
		op(domain.Deposit, domain.CDF, 500, domain.StatusSubmitted),
		op(domain.Withdrawal, domain.CDF, 300, domain.StatusApproved),
		op(domain.Withdrawal, domain.CDF, 200, domain.StatusRejected),
		op(domain.Deposit, domain.USD, 70, domain.StatusApproved),
		op(domain.Deposit, domain.CDF, 40, domain.StatusCanceled),
	}

	assert.Equal(t, int64(700), accounting.ApprovedBalance(ops, domain.CDF))
	assert.Equal(t, int64(70), accounting.ApprovedBalance(ops, domain.USD))

	totals := accounting.ApprovedTotals(ops, domain.CDF)
	assert.Equal(t, int64(1000), totals.InSum)
	assert.Equal(t, int64(300), totals.OutSum)
}

func TestEnsureCovered(t *testing.T) {
	assert.NoError(t, accounting.EnsureCovered(domain.CDF, 300, 300))

	err := accounting.EnsureCovered(domain.CDF, 300, 500)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "CDF")
	assert.Contains(t, err.Error(), "300")

	var funds *apperrors.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, int64(300), funds.Available)
}

func TestReplayBalance(t *testing.T) {
	decide := func(kind domain.OperationKind, amount int64, status domain.OperationStatus) domain.HistoryEntry {
		return domain.HistoryEntry{
			Action:        domain.HistoryAction(domain.VerbDecide, kind),
			OperationKind: kind,
			Currency:      domain.CDF,
			AmountMinor:   amount,
			Meta:          map[string]any{"status": string(status)},
		}
	}
	entries := []domain.HistoryEntry{
		{Action: "ADD_VERSEMENT", OperationKind: domain.Deposit, Currency: domain.CDF, AmountMinor: 1000},
		decide(domain.Deposit, 1000, domain.StatusApproved),
		decide(domain.Withdrawal, 600, domain.StatusApproved),
		decide(domain.Withdrawal, 600, domain.StatusRejected),
		{Action: "CANCEL_RETRAIT", OperationKind: domain.Withdrawal, Currency: domain.CDF, AmountMinor: 50},
		{Action: "DECIDE_VERSEMENT", OperationKind: domain.Deposit, Currency: domain.USD, AmountMinor: 9, Meta: map[string]any{"status": "APPROUVE"}},
	}

	balance, applied := accounting.ReplayBalance(entries, domain.CDF)
	assert.Equal(t, int64(400), balance)
	assert.Equal(t, 2, applied)
}
