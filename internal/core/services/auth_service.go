package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/platform/config"
	"github.com/SscSPs/gestion_caisse/internal/utils"
)

// tokenService implements the TokenSvcFacade for issuing JWT access tokens.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a new JWT access token for the given user.
// Role and approval travel in the claims, so a change takes effect at the next login.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	accessToken, expiresAt, err := utils.GenerateJWT(user.Actor(), s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return accessToken, expiresAt, nil
}
