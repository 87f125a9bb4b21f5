package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/platform/metrics"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	"github.com/SscSPs/gestion_caisse/internal/utils/accounting"
	"github.com/google/uuid"
)

const (
	// maxReferenceDraws bounds the candidates tried inside one unit of work.
	maxReferenceDraws = 16
	// maxCreateAttempts bounds the units of work retried after a reference collision at insert time.
	maxCreateAttempts = 5

	defaultOperationPageSize = 20
	maxOperationPageSize     = 200
)

var operationSortFields = map[string]bool{
	"createdAt":   true,
	"valueDate":   true,
	"amountMinor": true,
	"reference":   true,
}

// ReferenceSource draws a candidate reference for a prefix and a day.
type ReferenceSource func(prefix string, day time.Time) (string, error)

// operationService implements portssvc.OperationSvcFacade.
type operationService struct {
	BaseService
	ledger     portsrepo.LedgerRepositoryFacade
	metrics    *metrics.LedgerMetrics
	now        func() time.Time
	references ReferenceSource
}

// OperationServiceOption is a functional option for configuring the operation service
type OperationServiceOption func(*operationService)

// WithLedgerMetrics sets the metrics the service reports transitions to.
func WithLedgerMetrics(m *metrics.LedgerMetrics) OperationServiceOption {
	return func(s *operationService) {
		s.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) OperationServiceOption {
	return func(s *operationService) {
		s.now = now
	}
}

// WithReferenceSource overrides the reference candidate generator.
func WithReferenceSource(src ReferenceSource) OperationServiceOption {
	return func(s *operationService) {
		s.references = src
	}
}

// NewOperationService creates the lifecycle engine over a ledger store.
func NewOperationService(ledger portsrepo.LedgerRepositoryFacade, options ...OperationServiceOption) portssvc.OperationSvcFacade {
	svc := &operationService{
		ledger:     ledger,
		now:        time.Now,
		references: utils.NewReferenceCandidate,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.OperationSvcFacade = (*operationService)(nil)

// CreateOperation submits a new operation. A withdrawal larger than the approved balance is refused here
// as a courtesy; the decision step re-checks under lock.
func (s *operationService) CreateOperation(ctx context.Context, draft domain.OperationDraft, actor domain.Actor) (*domain.Operation, error) {
	if actor.ID == "" || !actor.Approved {
		err := fmt.Errorf("%w: account is not approved", apperrors.ErrUnauthorized)
		s.LogWarn(ctx, err, "Operation submission refused", slog.String("actor_id", actor.ID))
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		s.LogWarn(ctx, err, "Invalid operation draft", slog.String("actor_id", actor.ID))
		return nil, err
	}

	if draft.Kind == domain.Withdrawal {
		totals, err := s.ledger.ApprovedTotals(ctx, draft.Currency)
		if err != nil {
			s.LogError(ctx, err, "Failed to read approved totals for advisory check", slog.String("currency", string(draft.Currency)))
			return nil, fmt.Errorf("failed to read balance: %w", err)
		}
		if err := accounting.EnsureCovered(draft.Currency, totals.Balance(), draft.AmountMinor); err != nil {
			s.metrics.IncInsufficientFunds("create", string(draft.Currency))
			s.LogWarn(ctx, err, "Withdrawal exceeds approved balance at submission",
				slog.String("currency", string(draft.Currency)),
				slog.Int64("amount_minor", draft.AmountMinor))
			return nil, err
		}
	}

	var created domain.Operation
	var err error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		err = s.ledger.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
			now := s.now().UTC()
			ref, err := s.claimReference(ctx, tx, draft.Kind.ReferencePrefix(), now)
			if err != nil {
				return err
			}
			created = newOperation(draft, actor, ref, now)
			if err := tx.InsertOperation(ctx, created); err != nil {
				return err
			}
			return tx.AppendHistory(ctx, newHistoryEntry(domain.VerbAdd, created, actor, now, nil))
		})
		if !errors.Is(err, apperrors.ErrDuplicate) {
			break
		}
		s.metrics.IncReferenceRetry()
		s.LogDebug(ctx, "Reference collided at insert, retrying", slog.Int("attempt", attempt))
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			err = apperrors.NewAppError(http.StatusInternalServerError, "could not allocate a unique reference", err)
		}
		s.LogFailure(ctx, err, "Failed to create operation", slog.String("kind", string(draft.Kind)))
		return nil, err
	}

	s.metrics.IncTransition(domain.HistoryAction(domain.VerbAdd, created.Kind), string(created.Kind), string(created.Currency))
	s.LogInfo(ctx, "Operation submitted",
		slog.String("operation_id", created.ID),
		slog.String("reference", created.Reference),
		slog.String("kind", string(created.Kind)),
		slog.String("currency", string(created.Currency)),
		slog.Int64("amount_minor", created.AmountMinor))
	return &created, nil
}

// claimReference draws candidates until one is free in the store.
func (s *operationService) claimReference(ctx context.Context, tx portsrepo.LedgerTx, prefix string, day time.Time) (string, error) {
	for i := 0; i < maxReferenceDraws; i++ {
		ref, err := s.references(prefix, day)
		if err != nil {
			return "", fmt.Errorf("failed to draw reference: %w", err)
		}
		exists, err := tx.ReferenceExists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("failed to check reference: %w", err)
		}
		if !exists {
			return ref, nil
		}
		s.metrics.IncReferenceRetry()
	}
	return "", fmt.Errorf("%w: no free reference after %d draws", apperrors.ErrDuplicate, maxReferenceDraws)
}

// EditOperation applies a kind-specific patch to a submitted operation.
func (s *operationService) EditOperation(ctx context.Context, operationID string, patch domain.OperationPatch, actor domain.Actor) (*domain.Operation, error) {
	if patch.Kind() == "" {
		err := fmt.Errorf("%w: exactly one of deposit or withdrawal patch is required", apperrors.ErrValidation)
		s.LogWarn(ctx, err, "Invalid operation patch", slog.String("operation_id", operationID))
		return nil, err
	}

	var updated domain.Operation
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		op, err := tx.FindOperationForUpdate(ctx, operationID)
		if err != nil {
			return err
		}
		if err := ensureModifiable(*op, actor); err != nil {
			return err
		}
		if patch.Kind() != op.Kind {
			return fmt.Errorf("%w: patch targets %s but operation is %s", apperrors.ErrValidation, patch.Kind(), op.Kind)
		}

		before := *op
		updated, err = applyPatch(*op, patch)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		updated.Edited = true
		updated.UpdatedAt = now
		if err := tx.UpdateOperationIfSubmitted(ctx, updated); err != nil {
			return err
		}
		meta := map[string]any{
			"before": operationSnapshot(before),
			"after":  operationSnapshot(updated),
		}
		return tx.AppendHistory(ctx, newHistoryEntry(domain.VerbUpdate, updated, actor, now, meta))
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to edit operation", slog.String("operation_id", operationID))
		return nil, err
	}

	s.metrics.IncTransition(domain.HistoryAction(domain.VerbUpdate, updated.Kind), string(updated.Kind), string(updated.Currency))
	s.LogInfo(ctx, "Operation edited", slog.String("operation_id", updated.ID), slog.String("reference", updated.Reference))
	return &updated, nil
}

// CancelOperation moves a submitted operation to Canceled.
func (s *operationService) CancelOperation(ctx context.Context, operationID string, actor domain.Actor) (*domain.Operation, error) {
	var canceled domain.Operation
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		op, err := tx.FindOperationForUpdate(ctx, operationID)
		if err != nil {
			return err
		}
		if err := ensureModifiable(*op, actor); err != nil {
			return err
		}
		now := s.now().UTC()
		canceled = *op
		canceled.Status = domain.StatusCanceled
		canceled.CanceledAt = &now
		canceled.UpdatedAt = now
		if err := tx.UpdateOperationIfSubmitted(ctx, canceled); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, newHistoryEntry(domain.VerbCancel, canceled, actor, now, nil))
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to cancel operation", slog.String("operation_id", operationID))
		return nil, err
	}

	s.metrics.IncTransition(domain.HistoryAction(domain.VerbCancel, canceled.Kind), string(canceled.Kind), string(canceled.Currency))
	s.LogInfo(ctx, "Operation canceled", slog.String("operation_id", canceled.ID), slog.String("reference", canceled.Reference))
	return &canceled, nil
}

// DecideOperation approves or rejects a submitted operation. Approving a withdrawal re-reads the approved
// balance of its currency under the currency lock, so concurrent approvals cannot overdraw the till.
func (s *operationService) DecideOperation(ctx context.Context, operationID string, decision domain.OperationStatus, actor domain.Actor) (*domain.Operation, error) {
	if !actor.Approved || !actor.CanDecide() {
		err := fmt.Errorf("%w: decisions are reserved to managers and admins", apperrors.ErrForbidden)
		s.LogWarn(ctx, err, "Decision refused", slog.String("operation_id", operationID), slog.String("actor_id", actor.ID))
		return nil, err
	}
	if !decision.IsDecision() {
		err := fmt.Errorf("%w: decision must be %s or %s", apperrors.ErrValidation, domain.StatusApproved, domain.StatusRejected)
		s.LogWarn(ctx, err, "Invalid decision", slog.String("operation_id", operationID))
		return nil, err
	}

	var decided domain.Operation
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		op, err := tx.FindOperationForUpdate(ctx, operationID)
		if err != nil {
			return err
		}
		if op.Status != domain.StatusSubmitted {
			return fmt.Errorf("%w: operation %s is %s", apperrors.ErrNotEligible, op.Reference, op.Status)
		}
		if err := tx.LockCurrency(ctx, op.Currency); err != nil {
			return err
		}
		if decision == domain.StatusApproved && op.Kind == domain.Withdrawal {
			totals, err := tx.ApprovedTotals(ctx, op.Currency)
			if err != nil {
				return fmt.Errorf("failed to read balance: %w", err)
			}
			if err := accounting.EnsureCovered(op.Currency, totals.Balance(), op.AmountMinor); err != nil {
				s.metrics.IncInsufficientFunds("decide", string(op.Currency))
				return err
			}
		}

		now := s.now().UTC()
		decided = *op
		decided.Status = decision
		decided.UpdatedAt = now
		if err := tx.UpdateOperationIfSubmitted(ctx, decided); err != nil {
			return err
		}
		meta := map[string]any{"status": string(decision)}
		return tx.AppendHistory(ctx, newHistoryEntry(domain.VerbDecide, decided, actor, now, meta))
	})
	if err != nil {
		s.LogFailure(ctx, err, "Failed to decide operation",
			slog.String("operation_id", operationID),
			slog.String("decision", string(decision)))
		return nil, err
	}

	s.metrics.IncTransition(domain.HistoryAction(domain.VerbDecide, decided.Kind), string(decided.Kind), string(decided.Currency))
	s.LogInfo(ctx, "Operation decided",
		slog.String("operation_id", decided.ID),
		slog.String("reference", decided.Reference),
		slog.String("decision", string(decision)))
	return &decided, nil
}

// GetOperation retrieves an operation by id.
func (s *operationService) GetOperation(ctx context.Context, operationID string) (*domain.Operation, error) {
	op, err := s.ledger.FindOperationByID(ctx, operationID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get operation", slog.String("operation_id", operationID))
		return nil, err
	}
	return op, nil
}

// SearchOperations returns one page of operations. Paging defaults are applied here, not in the store.
func (s *operationService) SearchOperations(ctx context.Context, filter domain.OperationFilter) (*domain.OperationPage, error) {
	if filter.SortBy == "" {
		filter.SortBy = "createdAt"
	}
	if !operationSortFields[filter.SortBy] {
		return nil, fmt.Errorf("%w: unsupported sort field %q", apperrors.ErrValidation, filter.SortBy)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.PageSize <= 0:
		filter.PageSize = defaultOperationPageSize
	case filter.PageSize > maxOperationPageSize:
		filter.PageSize = maxOperationPageSize
	}
	filter.Query = strings.TrimSpace(filter.Query)

	items, total, err := s.ledger.SearchOperations(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to search operations")
		return nil, fmt.Errorf("failed to search operations: %w", err)
	}
	if items == nil {
		items = []domain.Operation{}
	}
	s.LogDebug(ctx, "Operations searched", slog.Int("total", total), slog.Int("page", filter.Page))
	return &domain.OperationPage{Total: total, Page: filter.Page, PageSize: filter.PageSize, Items: items}, nil
}

// logFailure logs caller mistakes at warn level and everything else at error level.
func validateDraft(d domain.OperationDraft) error {
	switch {
	case !d.Kind.Valid():
		return fmt.Errorf("%w: unknown operation kind %q", apperrors.ErrValidation, d.Kind)
	case !d.Currency.Valid():
		return fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, d.Currency)
	case d.AmountMinor <= 0:
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	case d.ValueDate.IsZero():
		return fmt.Errorf("%w: value date is required", apperrors.ErrValidation)
	}
	return nil
}

// ensureModifiable enforces the edit/cancel preconditions in the order callers see them:
// the status first, then ownership.
func ensureModifiable(op domain.Operation, actor domain.Actor) error {
	if op.Status != domain.StatusSubmitted {
		return fmt.Errorf("%w: operation %s is %s", apperrors.ErrNotEligible, op.Reference, op.Status)
	}
	if !actor.CanModify(op) {
		return fmt.Errorf("%w: only the creator or an admin may change operation %s", apperrors.ErrForbidden, op.Reference)
	}
	return nil
}

func newOperation(d domain.OperationDraft, actor domain.Actor, ref string, now time.Time) domain.Operation {
	op := domain.Operation{
		ID:          uuid.NewString(),
		Kind:        d.Kind,
		Currency:    d.Currency,
		AmountMinor: d.AmountMinor,
		ValueDate:   truncateDay(d.ValueDate),
		Reference:   ref,
		Status:      domain.StatusSubmitted,
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Mode:        strings.TrimSpace(d.Payload.Mode),
	}
	if d.Kind == domain.Deposit {
		op.Payer = strings.TrimSpace(d.Payload.Payer)
		op.Motive = strings.TrimSpace(d.Payload.Motive)
	} else {
		op.Beneficiary = strings.TrimSpace(d.Payload.Beneficiary)
		op.Purpose = strings.TrimSpace(d.Payload.Purpose)
	}
	return op
}

func applyPatch(op domain.Operation, patch domain.OperationPatch) (domain.Operation, error) {
	var amount *int64
	changed := false
	setText := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			changed = true
		}
	}

	switch p := patch; {
	case p.Deposit != nil:
		amount = p.Deposit.AmountMinor
		setText(&op.Payer, p.Deposit.Payer)
		setText(&op.Motive, p.Deposit.Motive)
		setText(&op.Mode, p.Deposit.Mode)
	case p.Withdrawal != nil:
		amount = p.Withdrawal.AmountMinor
		if p.Withdrawal.ValueDate != nil {
			if p.Withdrawal.ValueDate.IsZero() {
				return op, fmt.Errorf("%w: value date cannot be empty", apperrors.ErrValidation)
			}
			op.ValueDate = truncateDay(*p.Withdrawal.ValueDate)
			changed = true
		}
		setText(&op.Beneficiary, p.Withdrawal.Beneficiary)
		setText(&op.Purpose, p.Withdrawal.Purpose)
		setText(&op.Mode, p.Withdrawal.Mode)
	}

	if amount != nil {
		if *amount <= 0 {
			return op, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
		}
		op.AmountMinor = *amount
		changed = true
	}
	if !changed {
		return op, fmt.Errorf("%w: patch changes nothing", apperrors.ErrValidation)
	}
	return op, nil
}

func newHistoryEntry(verb string, op domain.Operation, actor domain.Actor, at time.Time, meta map[string]any) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:            uuid.NewString(),
		Timestamp:     at,
		ActorID:       actor.ID,
		Action:        domain.HistoryAction(verb, op.Kind),
		OperationID:   op.ID,
		OperationKind: op.Kind,
		Currency:      op.Currency,
		AmountMinor:   op.AmountMinor,
		Note:          op.Note(),
		Meta:          meta,
		OperationRef:  op.Reference,
	}
}

// operationSnapshot captures the editable fields for the before/after meta of an update.
func operationSnapshot(op domain.Operation) map[string]any {
	snap := map[string]any{
		"amountMinor": op.AmountMinor,
		"valueDate":   op.ValueDate.Format(time.DateOnly),
		"mode":        op.Mode,
	}
	if op.Kind == domain.Deposit {
		snap["payer"] = op.Payer
		snap["motive"] = op.Motive
	} else {
		snap["beneficiary"] = op.Beneficiary
		snap["purpose"] = op.Purpose
	}
	return snap
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
