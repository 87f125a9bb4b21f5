package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	"github.com/SscSPs/gestion_caisse/internal/models"
	"github.com/SscSPs/gestion_caisse/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const operationColumns = `operation_id, kind, currency, amount_minor, value_date, reference, status,
	created_by, edited, created_at, updated_at, canceled_at,
	payer, motive, beneficiary, purpose, mode`

var operationSortColumns = map[string]string{
	"createdAt":   "created_at",
	"valueDate":   "value_date",
	"amountMinor": "amount_minor",
	"reference":   "reference",
}

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates the repository behind operations, balances and history.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// WithinTx runs fn inside one database transaction. Row and advisory locks taken through
// the LedgerTx are held until fn returns.
func (r *PgxLedgerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := fn(ctx, &pgxLedgerTx{tx: tx}); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE operation_id = $1;`
	m, err := scanOperation(r.Pool.QueryRow(ctx, query, operationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find operation "+operationID, err)
	}
	op := mapping.ToDomainOperation(m)
	return &op, nil
}

func (r *PgxLedgerRepository) SearchOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.Operation, int, error) {
	where, args := operationWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM operations` + where + `;`
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count operations", err)
	}

	column, ok := operationSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	query := `SELECT ` + operationColumns + ` FROM operations` + where +
		` ORDER BY ` + column + ` ` + direction + `, operation_id ` + direction
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		args = append(args, filter.PageSize, offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.Pool.Query(ctx, query+`;`, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to search operations", err)
	}
	defer rows.Close()

	ops := make([]domain.Operation, 0)
	for rows.Next() {
		m, err := scanOperation(rows)
		if err != nil {
			return nil, 0, apperrors.NewAppError(500, "failed to scan operation row", err)
		}
		ops = append(ops, mapping.ToDomainOperation(m))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewAppError(500, "error iterating operation rows", err)
	}
	return ops, total, nil
}

func (r *PgxLedgerRepository) ApprovedTotals(ctx context.Context, currency domain.Currency) (domain.CurrencyTotals, error) {
	return approvedTotals(ctx, r.Pool, currency)
}

func (r *PgxLedgerRepository) ApprovedTotalsByCurrency(ctx context.Context) ([]domain.CurrencyTotals, error) {
	query := `
		SELECT currency,
		       COALESCE(SUM(amount_minor) FILTER (WHERE kind = 'VERSEMENT'), 0),
		       COALESCE(SUM(amount_minor) FILTER (WHERE kind = 'RETRAIT'), 0)
		FROM operations
		WHERE status = 'APPROUVE'
		GROUP BY currency
		ORDER BY currency;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query approved totals", err)
	}
	defer rows.Close()

	var out []domain.CurrencyTotals
	for rows.Next() {
		var t domain.CurrencyTotals
		var currency string
		if err := rows.Scan(&currency, &t.InSum, &t.OutSum); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan approved totals row", err)
		}
		t.Currency = domain.Currency(currency)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating approved totals rows", err)
	}
	return out, nil
}

func approvedTotals(ctx context.Context, q querier, currency domain.Currency) (domain.CurrencyTotals, error) {
	query := `
		SELECT COALESCE(SUM(amount_minor) FILTER (WHERE kind = 'VERSEMENT'), 0),
		       COALESCE(SUM(amount_minor) FILTER (WHERE kind = 'RETRAIT'), 0)
		FROM operations
		WHERE status = 'APPROUVE' AND currency = $1;
	`
	totals := domain.CurrencyTotals{Currency: currency}
	if err := q.QueryRow(ctx, query, string(currency)).Scan(&totals.InSum, &totals.OutSum); err != nil {
		return domain.CurrencyTotals{}, apperrors.NewAppError(500, "failed to sum approved operations for "+string(currency), err)
	}
	return totals, nil
}

// operationWhere renders the filter as a WHERE clause and its positional arguments.
func operationWhere(f domain.OperationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Status != nil {
		add("status = ?", string(*f.Status))
	}
	if f.Kind != nil {
		add("kind = ?", string(*f.Kind))
	}
	if f.Currency != nil {
		add("currency = ?", string(*f.Currency))
	}
	if f.ValueDateFrom != nil {
		add("value_date >= ?", *f.ValueDateFrom)
	}
	if f.ValueDateTo != nil {
		add("value_date <= ?", *f.ValueDateTo)
	}
	if f.MinAmount != nil {
		add("amount_minor >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("amount_minor <= ?", *f.MaxAmount)
	}
	if f.Query != "" {
		add("(reference ILIKE ? OR payer ILIKE ? OR motive ILIKE ? OR beneficiary ILIKE ? OR purpose ILIKE ?)", likePattern(f.Query))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanOperation(row pgx.Row) (models.Operation, error) {
	var m models.Operation
	err := row.Scan(
		&m.OperationID,
		&m.Kind,
		&m.Currency,
		&m.AmountMinor,
		&m.ValueDate,
		&m.Reference,
		&m.Status,
		&m.CreatedBy,
		&m.Edited,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.CanceledAt,
		&m.Payer,
		&m.Motive,
		&m.Beneficiary,
		&m.Purpose,
		&m.Mode,
	)
	return m, err
}

// pgxLedgerTx implements portsrepo.LedgerTx on an open transaction.
type pgxLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func (t *pgxLedgerTx) FindOperationForUpdate(ctx context.Context, operationID string) (*domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE operation_id = $1 FOR UPDATE;`
	m, err := scanOperation(t.tx.QueryRow(ctx, query, operationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock operation "+operationID, err)
	}
	op := mapping.ToDomainOperation(m)
	return &op, nil
}

// LockCurrency takes a transaction-scoped advisory lock keyed by the currency code.
func (t *pgxLedgerTx) LockCurrency(ctx context.Context, currency domain.Currency) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, "caisse:currency:"+string(currency)); err != nil {
		return apperrors.NewAppError(500, "failed to lock currency "+string(currency), err)
	}
	return nil
}

func (t *pgxLedgerTx) ApprovedTotals(ctx context.Context, currency domain.Currency) (domain.CurrencyTotals, error) {
	return approvedTotals(ctx, t.tx, currency)
}

func (t *pgxLedgerTx) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM operations WHERE reference = $1);`, ref).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check reference "+ref, err)
	}
	return exists, nil
}

func (t *pgxLedgerTx) InsertOperation(ctx context.Context, op domain.Operation) error {
	m := mapping.ToModelOperation(op)
	query := `
		INSERT INTO operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := t.tx.Exec(ctx, query,
		m.OperationID,
		m.Kind,
		m.Currency,
		m.AmountMinor,
		m.ValueDate,
		m.Reference,
		m.Status,
		m.CreatedBy,
		m.Edited,
		m.CreatedAt,
		m.UpdatedAt,
		m.CanceledAt,
		m.Payer,
		m.Motive,
		m.Beneficiary,
		m.Purpose,
		m.Mode,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: operation %s or reference %s", apperrors.ErrDuplicate, m.OperationID, m.Reference)
		}
		return apperrors.NewAppError(500, "failed to insert operation "+m.OperationID, err)
	}
	return nil
}

func (t *pgxLedgerTx) UpdateOperationIfSubmitted(ctx context.Context, op domain.Operation) error {
	m := mapping.ToModelOperation(op)
	query := `
		UPDATE operations
		SET amount_minor = $1, value_date = $2, status = $3, edited = $4, updated_at = $5, canceled_at = $6,
		    payer = $7, motive = $8, beneficiary = $9, purpose = $10, mode = $11
		WHERE operation_id = $12 AND status = 'SOUMIS';
	`
	cmdTag, err := t.tx.Exec(ctx, query,
		m.AmountMinor,
		m.ValueDate,
		m.Status,
		m.Edited,
		m.UpdatedAt,
		m.CanceledAt,
		m.Payer,
		m.Motive,
		m.Beneficiary,
		m.Purpose,
		m.Mode,
		m.OperationID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update operation "+m.OperationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("operation %s is no longer submitted: %w", m.OperationID, apperrors.ErrNotEligible)
	}
	return nil
}

func (t *pgxLedgerTx) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	m := mapping.ToModelHistoryEntry(entry)
	query := `
		INSERT INTO history (history_id, created_at, actor_id, action, operation_id, operation_kind, currency, amount_minor, note, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := t.tx.Exec(ctx, query,
		m.HistoryID,
		m.CreatedAt,
		m.ActorID,
		m.Action,
		m.OperationID,
		m.OperationKind,
		m.Currency,
		m.AmountMinor,
		m.Note,
		m.Meta,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append history for operation "+m.OperationID, err)
	}
	return nil
}
