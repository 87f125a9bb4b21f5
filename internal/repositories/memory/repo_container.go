package memory

import (
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
)

// NewRepositoryProvider wires in-memory stores behind the repository ports.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo: NewLedgerStore(),
		UserRepo:   NewUserStore(),
	}
}
