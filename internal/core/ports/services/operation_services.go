package services

import (
	"context"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
)

// OperationLifecycleSvc drives operations through Submitted -> {Approved, Rejected, Canceled}.
type OperationLifecycleSvc interface {
	// CreateOperation submits a new operation for an approved actor.
	CreateOperation(ctx context.Context, draft domain.OperationDraft, actor domain.Actor) (*domain.Operation, error)

	// EditOperation applies a kind-specific patch to a submitted operation.
	EditOperation(ctx context.Context, operationID string, patch domain.OperationPatch, actor domain.Actor) (*domain.Operation, error)

	// CancelOperation withdraws a submitted operation.
	CancelOperation(ctx context.Context, operationID string, actor domain.Actor) (*domain.Operation, error)

	// DecideOperation approves or rejects a submitted operation.
	DecideOperation(ctx context.Context, operationID string, decision domain.OperationStatus, actor domain.Actor) (*domain.Operation, error)
}

// OperationReaderSvc defines read operations for operations.
type OperationReaderSvc interface {
	GetOperation(ctx context.Context, operationID string) (*domain.Operation, error)
	SearchOperations(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error)
}

// OperationSvcFacade combines all operation-related service interfaces.
type OperationSvcFacade interface {
	OperationLifecycleSvc
	OperationReaderSvc
}
