package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// OperationReader defines read operations over committed operations.
type OperationReader interface {
	// FindOperationByID retrieves an operation by its id.
	FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error)

	// SearchOperations returns one page of operations matching the filter and the total match count.
	SearchOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.Operation, int, error)
}

// BalanceReader defines aggregate reads over approved operations.
type BalanceReader interface {
	// ApprovedTotals sums approved deposits and withdrawals of one currency.
	ApprovedTotals(ctx context.Context, currency domain.Currency) (domain.CurrencyTotals, error)

	// ApprovedTotalsByCurrency sums approved operations for every currency that has any.
	ApprovedTotalsByCurrency(ctx context.Context) ([]domain.CurrencyTotals, error)
}

// ReportReader defines the aggregations behind the dashboards.
type ReportReader interface {
	// DailyApprovedFlows groups approved operations with a value date on or after since by day and currency.
	DailyApprovedFlows(ctx context.Context, since time.Time, currencies []domain.Currency) ([]domain.DailyFlow, error)

	// TopBeneficiaries ranks beneficiaries of approved withdrawals by total amount.
	TopBeneficiaries(ctx context.Context, limit int) ([]domain.BeneficiaryTotal, error)
}

// HistoryReader defines read-only projections of the history ledger.
// Entries come back newest first with OperationRef resolved.
type HistoryReader interface {
	// ListHistory returns up to limit entries matching filter, plus a token for the next page.
	ListHistory(ctx context.Context, filter domain.HistoryFilter, limit int, nextToken *string) ([]domain.HistoryEntry, *string, error)

	// ListHistoryForCurrency returns every entry of a currency, oldest first, for replay.
	ListHistoryForCurrency(ctx context.Context, currency domain.Currency) ([]domain.HistoryEntry, error)
}

// LedgerRepositoryFacade combines the ledger unit of work with its read projections.
type LedgerRepositoryFacade interface {
	LedgerUnitOfWork
	OperationReader
	BalanceReader
	ReportReader
	HistoryReader
}
