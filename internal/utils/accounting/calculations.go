package accounting

import (
	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// SignedAmount applies the till convention: deposits add, withdrawals subtract.
func SignedAmount(kind domain.OperationKind, amountMinor int64) int64 {
	if kind == domain.Withdrawal {
		return -amountMinor
	}
	return amountMinor
}

// ApprovedTotals sums the approved operations of a currency.
func ApprovedTotals(ops []domain.Operation, currency domain.Currency) domain.CurrencyTotals {
	totals := domain.CurrencyTotals{Currency: currency}
	for _, op := range ops {
		if op.Currency != currency || op.Status != domain.StatusApproved {
			continue
		}
		if op.Kind == domain.Deposit {
			totals.InSum += op.AmountMinor
		} else {
			totals.OutSum += op.AmountMinor
		}
	}
	return totals
}

// ApprovedBalance is approved deposits minus approved withdrawals of a currency.
func ApprovedBalance(ops []domain.Operation, currency domain.Currency) int64 {
	return ApprovedTotals(ops, currency).Balance()
}

// EnsureCovered returns an InsufficientFundsError when requested exceeds available.
func EnsureCovered(currency domain.Currency, available, requested int64) error {
	if requested > available {
		return apperrors.NewInsufficientFundsError(string(currency), available, requested)
	}
	return nil
}

// ReplayBalance rebuilds the approved balance of a currency from its history.
// Only approval decisions move the balance; the amount recorded with the decision is the amount approved.
// It returns the balance and the number of entries that contributed to it.
func ReplayBalance(entries []domain.HistoryEntry, currency domain.Currency) (int64, int) {
	var balance int64
	applied := 0
	for _, e := range entries {
		if e.Currency != currency || !IsApproval(e) {
			continue
		}
		balance += SignedAmount(e.OperationKind, e.AmountMinor)
		applied++
	}
	return balance, applied
}

// IsApproval reports whether the entry records an approval decision.
func IsApproval(e domain.HistoryEntry) bool {
	if e.Action != domain.HistoryAction(domain.VerbDecide, e.OperationKind) {
		return false
	}
	status, _ := e.Meta["status"].(string)
	return domain.OperationStatus(status) == domain.StatusApproved
}
