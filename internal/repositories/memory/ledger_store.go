package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portsrepo "github.com/SscSPs/gestion_caisse/internal/core/ports/repositories"
	"github.com/SscSPs/gestion_caisse/internal/utils/accounting"
	"github.com/SscSPs/gestion_caisse/internal/utils/pagination"
)

// LedgerStore keeps operations and history in process memory.
// Writes go through WithinTx and become visible together under one store lock.
type LedgerStore struct {
	mu         sync.RWMutex
	operations map[string]domain.Operation
	references map[string]string // reference -> operation id
	history    []domain.HistoryEntry

	operationLocks *keyedLock
	currencyLocks  *keyedLock
}

// NewLedgerStore creates an empty ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		operations:     make(map[string]domain.Operation),
		references:     make(map[string]string),
		operationLocks: newKeyedLock(),
		currencyLocks:  newKeyedLock(),
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerStore)(nil)

// WithinTx runs fn against a staged view of the ledger and commits on success.
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &ledgerTx{store: s, held: make(map[string]func()), updates: make(map[string]domain.Operation)}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

// FindOperationByID retrieves a committed operation.
func (s *LedgerStore) FindOperationByID(_ context.Context, operationID string) (*domain.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.operations[operationID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &op, nil
}

// SearchOperations filters, sorts and pages committed operations.
func (s *LedgerStore) SearchOperations(_ context.Context, filter domain.OperationFilter) ([]domain.Operation, int, error) {
	s.mu.RLock()
	matches := make([]domain.Operation, 0, len(s.operations))
	for _, op := range s.operations {
		if matchesOperation(op, filter) {
			matches = append(matches, op)
		}
	}
	s.mu.RUnlock()

	sortOperations(matches, filter.SortBy, filter.Ascending)

	total := len(matches)
	start := (filter.Page - 1) * filter.PageSize
	if start < 0 {
		start = 0
	}
	if start >= total {
		return []domain.Operation{}, total, nil
	}
	end := start + filter.PageSize
	if filter.PageSize <= 0 || end > total {
		end = total
	}
	return matches[start:end], total, nil
}

// ApprovedTotals sums committed approved operations of a currency.
func (s *LedgerStore) ApprovedTotals(_ context.Context, currency domain.Currency) (domain.CurrencyTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return accounting.ApprovedTotals(s.snapshotLocked(nil), currency), nil
}

// ApprovedTotalsByCurrency sums committed approved operations per currency.
func (s *LedgerStore) ApprovedTotalsByCurrency(_ context.Context) ([]domain.CurrencyTotals, error) {
	s.mu.RLock()
	ops := s.snapshotLocked(nil)
	s.mu.RUnlock()

	seen := make(map[domain.Currency]bool)
	var out []domain.CurrencyTotals
	for _, op := range ops {
		if op.Status != domain.StatusApproved || seen[op.Currency] {
			continue
		}
		seen[op.Currency] = true
		out = append(out, accounting.ApprovedTotals(ops, op.Currency))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

// DailyApprovedFlows groups approved operations by value date and currency, oldest day first.
func (s *LedgerStore) DailyApprovedFlows(_ context.Context, since time.Time, currencies []domain.Currency) ([]domain.DailyFlow, error) {
	wanted := make(map[domain.Currency]bool, len(currencies))
	for _, c := range currencies {
		wanted[c] = true
	}

	type key struct {
		day      time.Time
		currency domain.Currency
	}
	flows := make(map[key]*domain.DailyFlow)

	s.mu.RLock()
	for _, op := range s.operations {
		if op.Status != domain.StatusApproved || op.ValueDate.Before(since) {
			continue
		}
		if len(wanted) > 0 && !wanted[op.Currency] {
			continue
		}
		day := op.ValueDate.UTC().Truncate(24 * time.Hour)
		k := key{day: day, currency: op.Currency}
		f, ok := flows[k]
		if !ok {
			f = &domain.DailyFlow{Date: day, Currency: op.Currency}
			flows[k] = f
		}
		if op.Kind == domain.Deposit {
			f.InSum += op.AmountMinor
		} else {
			f.OutSum += op.AmountMinor
		}
	}
	s.mu.RUnlock()

	out := make([]domain.DailyFlow, 0, len(flows))
	for _, f := range flows {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Currency < out[j].Currency
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// TopBeneficiaries ranks beneficiaries of approved withdrawals by total amount.
func (s *LedgerStore) TopBeneficiaries(_ context.Context, limit int) ([]domain.BeneficiaryTotal, error) {
	type key struct {
		name     string
		currency domain.Currency
	}
	totals := make(map[key]int64)

	s.mu.RLock()
	for _, op := range s.operations {
		if op.Kind != domain.Withdrawal || op.Status != domain.StatusApproved || op.Beneficiary == "" {
			continue
		}
		totals[key{name: op.Beneficiary, currency: op.Currency}] += op.AmountMinor
	}
	s.mu.RUnlock()

	out := make([]domain.BeneficiaryTotal, 0, len(totals))
	for k, v := range totals {
		out = append(out, domain.BeneficiaryTotal{Name: k.name, Currency: k.currency, AmountMinor: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AmountMinor == out[j].AmountMinor {
			return out[i].Name < out[j].Name
		}
		return out[i].AmountMinor > out[j].AmountMinor
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListHistory returns entries newest first, resolving operation references.
func (s *LedgerStore) ListHistory(_ context.Context, filter domain.HistoryFilter, limit int, nextToken *string) ([]domain.HistoryEntry, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		cursorTS  time.Time
		cursorID  string
		hasCursor bool
	)
	if nextToken != nil && *nextToken != "" {
		ts, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		cursorTS, cursorID, hasCursor = ts, id, true
	}

	s.mu.RLock()
	matches := make([]domain.HistoryEntry, 0)
	for _, e := range s.history {
		op, opFound := s.operations[e.OperationID]
		if !matchesHistory(e, op, opFound, filter) {
			continue
		}
		if hasCursor && !pagination.After(e.Timestamp, e.ID, cursorTS, cursorID) {
			continue
		}
		e.OperationRef = e.OperationID
		if opFound && op.Reference != "" {
			e.OperationRef = op.Reference
		}
		matches = append(matches, e)
	}
	s.mu.RUnlock()

	sortHistoryDesc(matches)

	var next *string
	if len(matches) > limit {
		last := matches[limit-1]
		token := pagination.EncodeToken(last.Timestamp, last.ID)
		next = &token
		matches = matches[:limit]
	}
	return matches, next, nil
}

// ListHistoryForCurrency returns every entry of a currency, oldest first.
func (s *LedgerStore) ListHistoryForCurrency(_ context.Context, currency domain.Currency) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	out := make([]domain.HistoryEntry, 0)
	for _, e := range s.history {
		if e.Currency == currency {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	sortHistoryDesc(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// snapshotLocked copies committed operations, overlaying staged updates. Caller holds s.mu.
func (s *LedgerStore) snapshotLocked(overlay map[string]domain.Operation) []domain.Operation {
	ops := make([]domain.Operation, 0, len(s.operations))
	for id, op := range s.operations {
		if staged, ok := overlay[id]; ok {
			op = staged
		}
		ops = append(ops, op)
	}
	return ops
}

// ledgerTx stages writes and holds keyed locks until commit or rollback.
type ledgerTx struct {
	store   *LedgerStore
	held    map[string]func()
	order   []string
	inserts []domain.Operation
	updates map[string]domain.Operation
	history []domain.HistoryEntry
}

var _ portsrepo.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) lock(ctx context.Context, locks *keyedLock, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	unlock, err := locks.acquire(ctx, key)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}
	t.held[key] = unlock
	t.order = append(t.order, key)
	return nil
}

func (t *ledgerTx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.held[t.order[i]]()
	}
	t.held = nil
	t.order = nil
}

func (t *ledgerTx) current(operationID string) (domain.Operation, bool) {
	if op, ok := t.updates[operationID]; ok {
		return op, true
	}
	for _, op := range t.inserts {
		if op.ID == operationID {
			return op, true
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	op, ok := t.store.operations[operationID]
	return op, ok
}

func (t *ledgerTx) FindOperationForUpdate(ctx context.Context, operationID string) (*domain.Operation, error) {
	if err := t.lock(ctx, t.store.operationLocks, "op:"+operationID); err != nil {
		return nil, err
	}
	op, ok := t.current(operationID)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &op, nil
}

func (t *ledgerTx) LockCurrency(ctx context.Context, currency domain.Currency) error {
	return t.lock(ctx, t.store.currencyLocks, "currency:"+string(currency))
}

func (t *ledgerTx) ApprovedTotals(_ context.Context, currency domain.Currency) (domain.CurrencyTotals, error) {
	t.store.mu.RLock()
	ops := t.store.snapshotLocked(t.updates)
	t.store.mu.RUnlock()
	ops = append(ops, t.inserts...)
	return accounting.ApprovedTotals(ops, currency), nil
}

func (t *ledgerTx) ReferenceExists(_ context.Context, ref string) (bool, error) {
	for _, op := range t.inserts {
		if op.Reference == ref {
			return true, nil
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	_, ok := t.store.references[ref]
	return ok, nil
}

func (t *ledgerTx) InsertOperation(ctx context.Context, op domain.Operation) error {
	exists, err := t.ReferenceExists(ctx, op.Reference)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: reference %s", apperrors.ErrDuplicate, op.Reference)
	}
	t.inserts = append(t.inserts, op)
	return nil
}

func (t *ledgerTx) UpdateOperationIfSubmitted(_ context.Context, op domain.Operation) error {
	stored, ok := t.current(op.ID)
	if !ok {
		return apperrors.ErrNotFound
	}
	if stored.Status != domain.StatusSubmitted {
		return fmt.Errorf("%w: operation %s is %s", apperrors.ErrNotEligible, op.ID, stored.Status)
	}
	t.updates[op.ID] = op
	return nil
}

func (t *ledgerTx) AppendHistory(_ context.Context, entry domain.HistoryEntry) error {
	t.history = append(t.history, entry)
	return nil
}

// commit revalidates staged writes against committed state and applies them all or none.
func (t *ledgerTx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range t.inserts {
		if _, taken := s.references[op.Reference]; taken {
			return fmt.Errorf("%w: reference %s", apperrors.ErrDuplicate, op.Reference)
		}
		if _, taken := s.operations[op.ID]; taken {
			return fmt.Errorf("%w: operation %s", apperrors.ErrDuplicate, op.ID)
		}
	}
	for id := range t.updates {
		stored, ok := s.operations[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		if stored.Status != domain.StatusSubmitted {
			return fmt.Errorf("%w: operation %s is %s", apperrors.ErrNotEligible, id, stored.Status)
		}
	}

	for _, op := range t.inserts {
		s.operations[op.ID] = op
		s.references[op.Reference] = op.ID
	}
	for id, op := range t.updates {
		s.operations[id] = op
	}
	s.history = append(s.history, t.history...)
	return nil
}

func matchesOperation(op domain.Operation, f domain.OperationFilter) bool {
	if f.Status != nil && op.Status != *f.Status {
		return false
	}
	if f.Kind != nil && op.Kind != *f.Kind {
		return false
	}
	if f.Currency != nil && op.Currency != *f.Currency {
		return false
	}
	if f.ValueDateFrom != nil && op.ValueDate.Before(*f.ValueDateFrom) {
		return false
	}
	if f.ValueDateTo != nil && op.ValueDate.After(*f.ValueDateTo) {
		return false
	}
	if f.MinAmount != nil && op.AmountMinor < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && op.AmountMinor > *f.MaxAmount {
		return false
	}
	if f.Query != "" {
		return containsFold(f.Query, op.Reference, op.Payer, op.Motive, op.Beneficiary, op.Purpose)
	}
	return true
}

func matchesHistory(e domain.HistoryEntry, op domain.Operation, opFound bool, f domain.HistoryFilter) bool {
	if f.Kind != nil && e.OperationKind != *f.Kind {
		return false
	}
	if f.Currency != nil && e.Currency != *f.Currency {
		return false
	}
	if f.ActorID != "" && e.ActorID != f.ActorID {
		return false
	}
	if f.OperationID != "" && e.OperationID != f.OperationID {
		return false
	}
	if f.Query != "" {
		if !opFound {
			return containsFold(f.Query, e.OperationID, e.Note)
		}
		return containsFold(f.Query, op.Reference, op.Payer, op.Beneficiary, op.Motive, op.Purpose, e.Note)
	}
	return true
}

func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func sortOperations(ops []domain.Operation, sortBy string, asc bool) {
	less := func(a, b domain.Operation) int {
		switch sortBy {
		case "valueDate":
			return a.ValueDate.Compare(b.ValueDate)
		case "amountMinor":
			switch {
			case a.AmountMinor < b.AmountMinor:
				return -1
			case a.AmountMinor > b.AmountMinor:
				return 1
			}
			return 0
		case "reference":
			return strings.Compare(a.Reference, b.Reference)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(ops, func(i, j int) bool {
		c := less(ops[i], ops[j])
		if c == 0 {
			c = strings.Compare(ops[i].ID, ops[j].ID)
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func sortHistoryDesc(entries []domain.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
