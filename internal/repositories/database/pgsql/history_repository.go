package pgsql

import (
	"context"
	"strconv"
	"strings"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/models"
	"github.com/SscSPs/gestion_caisse/internal/utils/mapping"
	"github.com/SscSPs/gestion_caisse/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

const historyColumns = `h.history_id, h.created_at, h.actor_id, h.action, h.operation_id, h.operation_kind,
	h.currency, h.amount_minor, h.note, h.meta, o.reference`

// ListHistory returns entries newest first using token-based pagination over (created_at, history_id).
// The operation reference is joined in; entries whose operation row is gone keep their raw id.
func (r *PgxLedgerRepository) ListHistory(ctx context.Context, filter domain.HistoryFilter, limit int, nextToken *string) ([]domain.HistoryEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.Kind != nil {
		add("h.operation_kind = ?", string(*filter.Kind))
	}
	if filter.Currency != nil {
		add("h.currency = ?", string(*filter.Currency))
	}
	if filter.ActorID != "" {
		add("h.actor_id = ?", filter.ActorID)
	}
	if filter.OperationID != "" {
		add("h.operation_id = ?", filter.OperationID)
	}
	if filter.Query != "" {
		add(`(h.note ILIKE ? OR (o.operation_id IS NULL AND h.operation_id ILIKE ?)
			OR o.reference ILIKE ? OR o.payer ILIKE ? OR o.beneficiary ILIKE ? OR o.motive ILIKE ? OR o.purpose ILIKE ?)`,
			likePattern(filter.Query))
	}
	if nextToken != nil && *nextToken != "" {
		lastTS, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastTS, lastID)
		conds = append(conds, "(h.created_at, h.history_id) < ($"+strconv.Itoa(len(args)-1)+"::timestamptz, $"+strconv.Itoa(len(args))+"::text)")
	}

	query := `SELECT ` + historyColumns + ` FROM history h LEFT JOIN operations o ON o.operation_id = h.operation_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY h.created_at DESC, h.history_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query history", err)
	}
	entries, err := collectHistory(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.Timestamp, last.ID)
		next = &token
		entries = entries[:limit]
	}
	return entries, next, nil
}

// ListHistoryForCurrency returns every entry of a currency, oldest first.
func (r *PgxLedgerRepository) ListHistoryForCurrency(ctx context.Context, currency domain.Currency) ([]domain.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + `
		FROM history h LEFT JOIN operations o ON o.operation_id = h.operation_id
		WHERE h.currency = $1
		ORDER BY h.created_at ASC, h.history_id ASC;`
	rows, err := r.Pool.Query(ctx, query, string(currency))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query history for "+string(currency), err)
	}
	return collectHistory(rows)
}

func collectHistory(rows pgx.Rows) ([]domain.HistoryEntry, error) {
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var m models.HistoryEntry
		err := rows.Scan(
			&m.HistoryID,
			&m.CreatedAt,
			&m.ActorID,
			&m.Action,
			&m.OperationID,
			&m.OperationKind,
			&m.Currency,
			&m.AmountMinor,
			&m.Note,
			&m.Meta,
			&m.Reference,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan history row", err)
		}
		entries = append(entries, mapping.ToDomainHistoryEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating history rows", err)
	}
	return entries, nil
}
