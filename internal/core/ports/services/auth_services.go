package services

import (
	"context"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken signs a token carrying the user id, role and approval flag.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
