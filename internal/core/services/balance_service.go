package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/utils/accounting"
)

// balanceService implements portssvc.BalanceSvc.
type balanceService struct {
	BaseService
	balances portsrepo.BalanceReader
	history  portsrepo.HistoryReader
}

// NewBalanceService creates a balance service.
func NewBalanceService(balances portsrepo.BalanceReader, history portsrepo.HistoryReader) portssvc.BalanceSvc {
	return &balanceService{balances: balances, history: history}
}

var _ portssvc.BalanceSvc = (*balanceService)(nil)

func (s *balanceService) GetBalance(ctx context.Context, currency domain.Currency) (int64, error) {
	if !currency.Valid() {
		return 0, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, currency)
	}
	totals, err := s.balances.ApprovedTotals(ctx, currency)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balance", slog.String("currency", string(currency)))
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	return totals.Balance(), nil
}

// GetTotals returns one row per supported currency, zeroed when nothing is approved yet.
func (s *balanceService) GetTotals(ctx context.Context) ([]domain.CurrencyTotals, error) {
	rows, err := s.balances.ApprovedTotalsByCurrency(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute totals")
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}
	byCurrency := make(map[domain.Currency]domain.CurrencyTotals, len(rows))
	for _, r := range rows {
		byCurrency[r.Currency] = r
	}
	out := make([]domain.CurrencyTotals, 0, len(domain.SupportedCurrencies))
	for _, c := range domain.SupportedCurrencies {
		t, ok := byCurrency[c]
		if !ok {
			t = domain.CurrencyTotals{Currency: c}
		}
		out = append(out, t)
	}
	return out, nil
}

// Reconcile replays the history of a currency and compares it with the approved balance.
func (s *balanceService) Reconcile(ctx context.Context, currency domain.Currency) (*domain.Reconciliation, error) {
	stored, err := s.GetBalance(ctx, currency)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListHistoryForCurrency(ctx, currency)
	if err != nil {
		s.LogError(ctx, err, "Failed to load history for replay", slog.String("currency", string(currency)))
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	replayed, applied := accounting.ReplayBalance(entries, currency)
	rec := &domain.Reconciliation{
		Currency:        currency,
		StoredBalance:   stored,
		ReplayedBalance: replayed,
		EntriesReplayed: applied,
	}
	if !rec.Consistent() {
		s.GetLogger(ctx).Error("Balance does not match history replay",
			slog.String("currency", string(currency)),
			slog.Int64("stored", stored),
			slog.Int64("replayed", replayed))
	}
	return rec, nil
}
