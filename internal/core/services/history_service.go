package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// historyService implements portssvc.HistorySvc.
type historyService struct {
	BaseService
	history portsrepo.HistoryReader
}

// NewHistoryService creates a history service.
func NewHistoryService(history portsrepo.HistoryReader) portssvc.HistorySvc {
	return &historyService{history: history}
}

var _ portssvc.HistorySvc = (*historyService)(nil)

func (s *historyService) ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	entries, _, err := s.Search(ctx, domain.HistoryFilter{}, limit, nil)
	return entries, err
}

func (s *historyService) Search(ctx context.Context, filter domain.HistoryFilter, limit int, nextToken *string) ([]domain.HistoryEntry, *string, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	entries, next, err := s.history.ListHistory(ctx, filter, clampHistoryLimit(limit), nextToken)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to list history")
		return nil, nil, fmt.Errorf("failed to list history: %w", err)
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, next, nil
}

func clampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	}
	return limit
}
