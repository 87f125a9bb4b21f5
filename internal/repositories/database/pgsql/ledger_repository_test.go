package pgsql

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestOperationWhereEmptyFilter(t *testing.T) {
	where, args := operationWhere(domain.OperationFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestOperationWhereNumbersPlaceholdersInOrder(t *testing.T) {
	status := domain.StatusApproved
	currency := domain.USD
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	minAmount := int64(100)

	where, args := operationWhere(domain.OperationFilter{
		Status:        &status,
		Currency:      &currency,
		ValueDateFrom: &from,
		MinAmount:     &minAmount,
		Query:         "acme",
	})

	assert.Equal(t,
		" WHERE status = $1 AND currency = $2 AND value_date >= $3 AND amount_minor >= $4"+
			" AND (reference ILIKE $5 OR payer ILIKE $5 OR motive ILIKE $5 OR beneficiary ILIKE $5 OR purpose ILIKE $5)",
		where)
	assert.Equal(t, []any{"APPROUVE", "USD", from, int64(100), "%acme%"}, args)
}

func TestLikePatternEscapesMetacharacters(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
