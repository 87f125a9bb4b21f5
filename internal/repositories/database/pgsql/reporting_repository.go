package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// DailyApprovedFlows groups approved operations by value date and currency, oldest day first.
func (r *PgxLedgerRepository) DailyApprovedFlows(ctx context.Context, since time.Time, currencies []domain.Currency) ([]domain.DailyFlow, error) {
	query := `
		SELECT
			value_date,
			currency,
			COALESCE(SUM(amount_minor) FILTER (WHERE kind = 'VERSEMENT'), 0) AS in_sum,
			COALESCE(SUM(amount_minor) FILTER (WHERE kind = 'RETRAIT'), 0) AS out_sum
		FROM operations
		WHERE status = 'APPROUVE'
			AND value_date >= $1
			AND (cardinality($2::text[]) = 0 OR currency = ANY($2::text[]))
		GROUP BY value_date, currency
		ORDER BY value_date, currency
	`
	codes := make([]string, len(currencies))
	for i, c := range currencies {
		codes[i] = string(c)
	}

	rows, err := r.Pool.Query(ctx, query, since, codes)
	if err != nil {
		return nil, fmt.Errorf("error querying daily flows: %w", err)
	}
	defer rows.Close()

	result := make([]domain.DailyFlow, 0)
	for rows.Next() {
		var row domain.DailyFlow
		var currency string
		if err := rows.Scan(&row.Date, &currency, &row.InSum, &row.OutSum); err != nil {
			return nil, fmt.Errorf("error scanning daily flow row: %w", err)
		}
		row.Currency = domain.Currency(currency)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily flow rows: %w", err)
	}
	return result, nil
}

// TopBeneficiaries ranks beneficiaries of approved withdrawals by total amount.
func (r *PgxLedgerRepository) TopBeneficiaries(ctx context.Context, limit int) ([]domain.BeneficiaryTotal, error) {
	query := `
		SELECT beneficiary, currency, SUM(amount_minor) AS total
		FROM operations
		WHERE kind = 'RETRAIT'
			AND status = 'APPROUVE'
			AND beneficiary <> ''
		GROUP BY beneficiary, currency
		ORDER BY total DESC, beneficiary
		LIMIT NULLIF($1, 0)
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying top beneficiaries: %w", err)
	}
	defer rows.Close()

	result := make([]domain.BeneficiaryTotal, 0)
	for rows.Next() {
		var row domain.BeneficiaryTotal
		var currency string
		if err := rows.Scan(&row.Name, &currency, &row.AmountMinor); err != nil {
			return nil, fmt.Errorf("error scanning beneficiary row: %w", err)
		}
		row.Currency = domain.Currency(currency)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating beneficiary rows: %w", err)
	}
	return result, nil
}
