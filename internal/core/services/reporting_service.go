package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
)

const (
	defaultReportDays       = 90
	maxReportDays           = 365
	defaultTopBeneficiaries = 10
	maxTopBeneficiaries     = 50
)

// reportingService implements portssvc.ReportingSvc
type reportingService struct {
	BaseService
	reports portsrepo.ReportReader
	now     func() time.Time
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides the time source used to compute report windows.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = now
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportReader, options ...ReportingServiceOption) portssvc.ReportingSvc {
	svc := &reportingService{
		reports: repo,
		now:     time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure reportingService implements the ReportingSvc interface
var _ portssvc.ReportingSvc = (*reportingService)(nil)

// DailyFlows returns approved inflow/outflow per day and currency over the last days days, today included.
func (s *reportingService) DailyFlows(ctx context.Context, days int, currencies []domain.Currency) ([]domain.DailyFlow, error) {
	switch {
	case days == 0:
		days = defaultReportDays
	case days < 0 || days > maxReportDays:
		return nil, fmt.Errorf("%w: days must be between 1 and %d", apperrors.ErrValidation, maxReportDays)
	}
	for _, c := range currencies {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, c)
		}
	}
	if len(currencies) == 0 {
		currencies = domain.SupportedCurrencies
	}

	since := truncateDay(s.now().UTC()).AddDate(0, 0, -(days - 1))
	flows, err := s.reports.DailyApprovedFlows(ctx, since, currencies)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve daily flows", slog.Int("days", days))
		return nil, fmt.Errorf("failed to retrieve daily flows: %w", err)
	}

	s.LogInfo(ctx, "Daily flows report generated successfully",
		slog.Int("days", days),
		slog.String("since", since.Format(time.DateOnly)),
		slog.Int("row_count", len(flows)))
	return flows, nil
}

// TopBeneficiaries ranks beneficiaries of approved withdrawals.
func (s *reportingService) TopBeneficiaries(ctx context.Context, limit int) ([]domain.BeneficiaryTotal, error) {
	switch {
	case limit == 0:
		limit = defaultTopBeneficiaries
	case limit < 0 || limit > maxTopBeneficiaries:
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", apperrors.ErrValidation, maxTopBeneficiaries)
	}
	rows, err := s.reports.TopBeneficiaries(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve top beneficiaries", slog.Int("limit", limit))
		return nil, fmt.Errorf("failed to retrieve top beneficiaries: %w", err)
	}
	s.LogInfo(ctx, "Top beneficiaries report generated successfully", slog.Int("row_count", len(rows)))
	return rows, nil
}
