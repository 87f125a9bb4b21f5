package services

import (
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/platform/config"
	"github.com/SscSPs/gestion_caisse/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, ledgerMetrics *metrics.LedgerMetrics) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Operation: NewOperationService(repos.LedgerRepo, WithLedgerMetrics(ledgerMetrics)),
		Balance:   NewBalanceService(repos.LedgerRepo, repos.LedgerRepo),
		History:   NewHistoryService(repos.LedgerRepo),
		Reporting: NewReportingService(repos.LedgerRepo),
		User:      NewUserService(repos.UserRepo),
		Token:     NewTokenService(cfg),
	}
}
