package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportingService_DailyFlowsWindow(t *testing.T) {
	repo, _ := newMockLedger()
	now := time.Date(2025, 6, 30, 17, 45, 0, 0, time.UTC)
	svc := services.NewReportingService(repo, services.WithReportingClock(func() time.Time { return now }))
	ctx := context.Background()

	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.DailyFlow{{Date: since, Currency: domain.CDF, InSum: 100}}
	repo.On("DailyApprovedFlows", ctx, since, domain.SupportedCurrencies).Return(rows, nil).Once()

	got, err := svc.DailyFlows(ctx, 30, nil)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	repo.AssertExpectations(t)
}

func TestReportingService_Validation(t *testing.T) {
	repo, _ := newMockLedger()
	svc := services.NewReportingService(repo)
	ctx := context.Background()

	_, err := svc.DailyFlows(ctx, 366, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.DailyFlows(ctx, 7, []domain.Currency{"EUR"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = svc.TopBeneficiaries(ctx, 51)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	repo.On("TopBeneficiaries", ctx, 10).Return([]domain.BeneficiaryTotal{{Name: "Fournisseur", Currency: domain.USD, AmountMinor: 900}}, nil).Once()
	top, err := svc.TopBeneficiaries(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestBalanceService_TotalsCoverEveryCurrency(t *testing.T) {
	repo, _ := newMockLedger()
	svc := services.NewBalanceService(repo, repo)
	ctx := context.Background()

	repo.On("ApprovedTotalsByCurrency", ctx).Return([]domain.CurrencyTotals{{Currency: domain.USD, InSum: 900, OutSum: 100}}, nil).Once()

	totals, err := svc.GetTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, domain.CurrencyTotals{Currency: domain.CDF}, totals[0])
	assert.Equal(t, int64(800), totals[1].Balance())

	_, err = svc.GetBalance(ctx, "EUR")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
