package repositories

import (
	"context"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// LedgerTx is the view of the ledger available inside one atomic unit of work.
// Writes staged through it become visible together on commit, or not at all.
type LedgerTx interface {
	// FindOperationForUpdate reads an operation and holds its row lock until the unit of work ends.
	FindOperationForUpdate(ctx context.Context, operationID string) (*domain.Operation, error)

	// LockCurrency serializes every unit of work touching the approved set of a currency.
	// Callers that also lock an operation must lock the operation first.
	LockCurrency(ctx context.Context, currency domain.Currency) error

	// ApprovedTotals sums approved deposits and withdrawals of a currency as seen by this unit of work.
	ApprovedTotals(ctx context.Context, currency domain.Currency) (domain.CurrencyTotals, error)

	// ReferenceExists reports whether any operation already holds ref.
	ReferenceExists(ctx context.Context, ref string) (bool, error)

	// InsertOperation stores a new operation. A reference collision returns apperrors.ErrDuplicate.
	InsertOperation(ctx context.Context, op domain.Operation) error

	// UpdateOperationIfSubmitted overwrites op only while the stored row is still submitted.
	// A lost race returns apperrors.ErrNotEligible.
	UpdateOperationIfSubmitted(ctx context.Context, op domain.Operation) error

	// AppendHistory stores an immutable history entry.
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
}

// LedgerUnitOfWork runs fn atomically. Any error returned by fn rolls every staged write back.
type LedgerUnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}
