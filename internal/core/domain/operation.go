package domain

import (
	"strings"
	"time"
)

// OperationKind distinguishes money entering the till from money leaving it.
type OperationKind string

const (
	Deposit    OperationKind = "VERSEMENT"
	Withdrawal OperationKind = "RETRAIT"
)

// Valid reports whether k is a known kind.
func (k OperationKind) Valid() bool {
	return k == Deposit || k == Withdrawal
}

// ReferencePrefix is the leading segment of references issued for this kind.
func (k OperationKind) ReferencePrefix() string {
	if k == Withdrawal {
		return "RET"
	}
	return "VER"
}

// Currency is an ISO-like currency code held by the till.
type Currency string

const (
	CDF Currency = "CDF"
	USD Currency = "USD"
)

// SupportedCurrencies lists the currencies the till accepts.
var SupportedCurrencies = []Currency{CDF, USD}

// ParseCurrency normalises a code and reports whether it is supported.
func ParseCurrency(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	return c, c.Valid()
}

// Valid reports whether c is supported.
func (c Currency) Valid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// OperationStatus is the lifecycle state of an operation.
type OperationStatus string

const (
	StatusSubmitted OperationStatus = "SOUMIS"
	StatusApproved  OperationStatus = "APPROUVE"
	StatusRejected  OperationStatus = "REJETE"
	StatusCanceled  OperationStatus = "ANNULE"
)

// Valid reports whether s is a known status.
func (s OperationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s OperationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCanceled
}

// IsDecision reports whether s is an outcome a decider may choose.
func (s OperationStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Operation is a single deposit or withdrawal against the till.
type Operation struct {
	ID          string          `json:"id"`
	Kind        OperationKind   `json:"kind"`
	Currency    Currency        `json:"currency"`
	AmountMinor int64           `json:"amountMinor"`
	ValueDate   time.Time       `json:"valueDate"`
	Reference   string          `json:"reference"`
	Status      OperationStatus `json:"status"`
	CreatedBy   string          `json:"createdBy"`
	Edited      bool            `json:"edited"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	CanceledAt  *time.Time      `json:"canceledAt,omitempty"`

	Payer       string `json:"payer,omitempty"`       // Deposit
	Motive      string `json:"motive,omitempty"`      // Deposit
	Beneficiary string `json:"beneficiary,omitempty"` // Withdrawal
	Purpose     string `json:"purpose,omitempty"`     // Withdrawal
	Mode        string `json:"mode,omitempty"`        // Payment mode, both kinds
}

// Note is the free text recorded in history for this operation.
func (o Operation) Note() string {
	if o.Kind == Deposit {
		return o.Motive
	}
	return o.Purpose
}

// Counterparty is the payer of a deposit or the beneficiary of a withdrawal.
func (o Operation) Counterparty() string {
	if o.Kind == Deposit {
		return o.Payer
	}
	return o.Beneficiary
}

// OperationDraft is what a submitter provides to create an operation.
type OperationDraft struct {
	Kind        OperationKind
	Currency    Currency
	AmountMinor int64
	ValueDate   time.Time
	Payload     OperationPayload
}

// OperationPayload holds the kind-specific descriptive fields supplied at creation.
type OperationPayload struct {
	Payer       string
	Motive      string
	Beneficiary string
	Purpose     string
	Mode        string
}

// DepositPatch lists what may change on a submitted deposit. The value date is fixed at submission.
type DepositPatch struct {
	AmountMinor *int64
	Payer       *string
	Motive      *string
	Mode        *string
}

// WithdrawalPatch lists what may change on a submitted withdrawal.
type WithdrawalPatch struct {
	AmountMinor *int64
	ValueDate   *time.Time
	Beneficiary *string
	Purpose     *string
	Mode        *string
}

// OperationPatch carries exactly one of the kind-specific patches.
type OperationPatch struct {
	Deposit    *DepositPatch
	Withdrawal *WithdrawalPatch
}

// Kind returns the operation kind the patch targets, or "" when none or both are set.
func (p OperationPatch) Kind() OperationKind {
	switch {
	case p.Deposit != nil && p.Withdrawal == nil:
		return Deposit
	case p.Withdrawal != nil && p.Deposit == nil:
		return Withdrawal
	}
	return ""
}

// OperationFilter narrows an operation search.
type OperationFilter struct {
	Status        *OperationStatus
	Kind          *OperationKind
	Currency      *Currency
	Query         string
	ValueDateFrom *time.Time
	ValueDateTo   *time.Time
	MinAmount     *int64
	MaxAmount     *int64
	SortBy        string // createdAt, valueDate, amountMinor, reference
	Ascending     bool
	Page          int
	PageSize      int
}

// OperationPage is one page of an operation search.
type OperationPage struct {
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Items    []Operation `json:"items"`
}
