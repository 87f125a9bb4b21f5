package services

import (
	"context"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// BalanceSvc computes approved balances.
type BalanceSvc interface {
	// GetBalance returns approved deposits minus approved withdrawals, in minor units.
	GetBalance(ctx context.Context, currency domain.Currency) (int64, error)

	// GetTotals returns approved inflow/outflow for every supported currency.
	GetTotals(ctx context.Context) ([]domain.CurrencyTotals, error)

	// Reconcile rebuilds the balance from the history ledger and compares it with the stored one.
	Reconcile(ctx context.Context, currency domain.Currency) (*domain.Reconciliation, error)
}

// HistorySvc exposes the read side of the audit ledger.
type HistorySvc interface {
	// ListRecent returns the newest entries.
	ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Search returns one page of entries matching filter.
	Search(ctx context.Context, filter domain.HistoryFilter, limit int, nextToken *string) ([]domain.HistoryEntry, *string, error)
}

// ReportingSvc builds dashboard aggregates.
type ReportingSvc interface {
	DailyFlows(ctx context.Context, days int, currencies []domain.Currency) ([]domain.DailyFlow, error)
	TopBeneficiaries(ctx context.Context, limit int) ([]domain.BeneficiaryTotal, error)
}
