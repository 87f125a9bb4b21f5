package pgsql

import (
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo: newPgxLedgerRepository(dbPool),
		UserRepo:   newPgxUserRepository(dbPool),
	}
}
