package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/utils"
)

// BalanceResponse is the approved position of one currency.
type BalanceResponse struct {
	Currency     domain.Currency `json:"currency"`
	BalanceMinor int64           `json:"balanceMinor"`
	Balance      string          `json:"balance" example:"400.00"`
	InSum        int64           `json:"inSum,omitempty"`
	OutSum       int64           `json:"outSum,omitempty"`
}

// NewBalanceResponse describes a bare balance without its inflow/outflow split.
func NewBalanceResponse(currency domain.Currency, balanceMinor int64) BalanceResponse {
	return BalanceResponse{
		Currency:     currency,
		BalanceMinor: balanceMinor,
		Balance:      utils.FormatMinor(balanceMinor, currency),
	}
}

// ListBalancesResponse wraps one balance per supported currency.
type ListBalancesResponse struct {
	Balances []BalanceResponse `json:"balances"`
}

// ToBalanceResponse converts approved totals.
func ToBalanceResponse(t domain.CurrencyTotals) BalanceResponse {
	return BalanceResponse{
		Currency:     t.Currency,
		BalanceMinor: t.Balance(),
		Balance:      utils.FormatMinor(t.Balance(), t.Currency),
		InSum:        t.InSum,
		OutSum:       t.OutSum,
	}
}

// ToListBalancesResponse converts a set of approved totals.
func ToListBalancesResponse(totals []domain.CurrencyTotals) ListBalancesResponse {
	out := make([]BalanceResponse, len(totals))
	for i, t := range totals {
		out[i] = ToBalanceResponse(t)
	}
	return ListBalancesResponse{Balances: out}
}

// ReconciliationResponse compares the stored balance with the history replay.
type ReconciliationResponse struct {
	domain.Reconciliation
	Consistent bool `json:"consistent"`
}

// ToReconciliationResponse converts a reconciliation.
func ToReconciliationResponse(r *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{Reconciliation: *r, Consistent: r.Consistent()}
}

// ListHistoryParams defines query parameters for the recent history feed.
type ListHistoryParams struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}

// SearchHistoryParams defines query parameters for searching history.
type SearchHistoryParams struct {
	Kind        string  `form:"kind" binding:"omitempty,caisse_kind"`
	Currency    string  `form:"currency" binding:"omitempty,caisse_currency"`
	ActorID     string  `form:"actorId"`
	OperationID string  `form:"operationId"`
	Query       string  `form:"q" binding:"max=200"`
	Limit       int     `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken   *string `form:"nextToken"`
}

// ToFilter converts query parameters into a history filter.
func (p SearchHistoryParams) ToFilter() domain.HistoryFilter {
	f := domain.HistoryFilter{
		ActorID:     strings.TrimSpace(p.ActorID),
		OperationID: strings.TrimSpace(p.OperationID),
		Query:       strings.TrimSpace(p.Query),
	}
	if p.Kind != "" {
		kind := domain.OperationKind(p.Kind)
		f.Kind = &kind
	}
	if p.Currency != "" {
		currency, _ := domain.ParseCurrency(p.Currency)
		f.Currency = &currency
	}
	return f
}

// HistoryEntryResponse is the public view of an audit record.
type HistoryEntryResponse struct {
	ID            string               `json:"id"`
	Timestamp     time.Time            `json:"timestamp"`
	ActorID       string               `json:"actorId"`
	Action        string               `json:"action" example:"DECIDE_RETRAIT"`
	OperationID   string               `json:"operationId"`
	OperationRef  string               `json:"operationRef" example:"RET-20240531-7KQ2ZP"`
	OperationKind domain.OperationKind `json:"operationKind"`
	Currency      domain.Currency      `json:"currency"`
	AmountMinor   int64                `json:"amountMinor"`
	Amount        string               `json:"amount"`
	Note          string               `json:"note,omitempty"`
	Meta          map[string]any       `json:"meta,omitempty"`
}

// ListHistoryResponse is one page of history.
type ListHistoryResponse struct {
	Entries   []HistoryEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToHistoryEntryResponse converts a domain.HistoryEntry.
func ToHistoryEntryResponse(e domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:            e.ID,
		Timestamp:     e.Timestamp,
		ActorID:       e.ActorID,
		Action:        e.Action,
		OperationID:   e.OperationID,
		OperationRef:  e.OperationRef,
		OperationKind: e.OperationKind,
		Currency:      e.Currency,
		AmountMinor:   e.AmountMinor,
		Amount:        utils.FormatMinor(e.AmountMinor, e.Currency),
		Note:          e.Note,
		Meta:          e.Meta,
	}
}

// ToListHistoryResponse converts a page of entries.
func ToListHistoryResponse(entries []domain.HistoryEntry, next *string) ListHistoryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToHistoryEntryResponse(e)
	}
	return ListHistoryResponse{Entries: out, NextToken: next}
}

// DailyFlowsParams defines query parameters of the daily flows report.
type DailyFlowsParams struct {
	Days       int    `form:"days,default=90" binding:"min=1,max=365"`
	Currencies string `form:"currencies"` // comma separated, all supported currencies when empty
}

// DailyFlowResponse is one day of approved movements in one currency.
type DailyFlowResponse struct {
	Date     string          `json:"date" example:"2024-05-31"`
	Currency domain.Currency `json:"currency"`
	InSum    int64           `json:"inSum"`
	OutSum   int64           `json:"outSum"`
	Net      string          `json:"net"`
}

// DailyFlowsResponse wraps the daily flows report.
type DailyFlowsResponse struct {
	Days  int                 `json:"days"`
	Flows []DailyFlowResponse `json:"flows"`
}

// ToDailyFlowsResponse converts report rows.
func ToDailyFlowsResponse(days int, rows []domain.DailyFlow) DailyFlowsResponse {
	out := make([]DailyFlowResponse, len(rows))
	for i, r := range rows {
		out[i] = DailyFlowResponse{
			Date:     r.Date.Format(time.DateOnly),
			Currency: r.Currency,
			InSum:    r.InSum,
			OutSum:   r.OutSum,
			Net:      utils.FormatMinor(r.InSum-r.OutSum, r.Currency),
		}
	}
	return DailyFlowsResponse{Days: days, Flows: out}
}

// TopBeneficiariesParams defines query parameters of the top beneficiaries report.
type TopBeneficiariesParams struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=50"`
}

// BeneficiaryTotalResponse is the approved total paid to one beneficiary in one currency.
type BeneficiaryTotalResponse struct {
	Name        string          `json:"name"`
	Currency    domain.Currency `json:"currency"`
	AmountMinor int64           `json:"amountMinor"`
	Amount      string          `json:"amount"`
}

// TopBeneficiariesResponse wraps the ranking.
type TopBeneficiariesResponse struct {
	Beneficiaries []BeneficiaryTotalResponse `json:"beneficiaries"`
}

// ToTopBeneficiariesResponse converts ranking rows.
func ToTopBeneficiariesResponse(rows []domain.BeneficiaryTotal) TopBeneficiariesResponse {
	out := make([]BeneficiaryTotalResponse, len(rows))
	for i, r := range rows {
		out[i] = BeneficiaryTotalResponse{
			Name:        r.Name,
			Currency:    r.Currency,
			AmountMinor: r.AmountMinor,
			Amount:      utils.FormatMinor(r.AmountMinor, r.Currency),
		}
	}
	return TopBeneficiariesResponse{Beneficiaries: out}
}
