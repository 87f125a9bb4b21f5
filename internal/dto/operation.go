package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	"github.com/shopspring/decimal"
)

// CreateOperationRequest defines the body for submitting a deposit or a withdrawal.
// The amount is given either in minor units (amountMinor) or as a decimal in major units (amount).
type CreateOperationRequest struct {
	Kind        domain.OperationKind `json:"kind" binding:"required,caisse_kind"`
	Currency    string               `json:"currency" binding:"required,caisse_currency"`
	AmountMinor *int64               `json:"amountMinor,omitempty" binding:"omitempty,gt=0"`
	Amount      *decimal.Decimal     `json:"amount,omitempty" swaggertype:"string" example:"1250.50"`
	ValueDate   string               `json:"valueDate" binding:"required,datetime=2006-01-02" example:"2024-05-31"`
	Payer       string               `json:"payer,omitempty" binding:"max=200"`
	Motive      string               `json:"motive,omitempty" binding:"max=500"`
	Beneficiary string               `json:"beneficiary,omitempty" binding:"max=200"`
	Purpose     string               `json:"purpose,omitempty" binding:"max=500"`
	Mode        string               `json:"mode,omitempty" binding:"max=50"`
}

// ToDraft converts the request into the engine input.
func (r CreateOperationRequest) ToDraft() (domain.OperationDraft, error) {
	currency, ok := domain.ParseCurrency(r.Currency)
	if !ok {
		return domain.OperationDraft{}, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, r.Currency)
	}
	amountMinor, err := resolveAmount(r.AmountMinor, r.Amount, currency, true)
	if err != nil {
		return domain.OperationDraft{}, err
	}
	valueDate, err := parseDate(r.ValueDate)
	if err != nil {
		return domain.OperationDraft{}, err
	}
	return domain.OperationDraft{
		Kind:        r.Kind,
		Currency:    currency,
		AmountMinor: *amountMinor,
		ValueDate:   valueDate,
		Payload: domain.OperationPayload{
			Payer:       r.Payer,
			Motive:      r.Motive,
			Beneficiary: r.Beneficiary,
			Purpose:     r.Purpose,
			Mode:        r.Mode,
		},
	}, nil
}

// UpdateOperationRequest defines the partial update of a submitted operation.
// Omitted fields keep their value. Only withdrawals accept a new valueDate.
type UpdateOperationRequest struct {
	AmountMinor *int64           `json:"amountMinor,omitempty" binding:"omitempty,gt=0"`
	Amount      *decimal.Decimal `json:"amount,omitempty" swaggertype:"string"`
	ValueDate   *string          `json:"valueDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Payer       *string          `json:"payer,omitempty" binding:"omitempty,max=200"`
	Motive      *string          `json:"motive,omitempty" binding:"omitempty,max=500"`
	Beneficiary *string          `json:"beneficiary,omitempty" binding:"omitempty,max=200"`
	Purpose     *string          `json:"purpose,omitempty" binding:"omitempty,max=500"`
	Mode        *string          `json:"mode,omitempty" binding:"omitempty,max=50"`
}

// ToPatch builds the kind-specific patch for an operation of the given kind and currency.
// Fields that do not belong to the kind are rejected rather than ignored.
func (r UpdateOperationRequest) ToPatch(kind domain.OperationKind, currency domain.Currency) (domain.OperationPatch, error) {
	amountMinor, err := resolveAmount(r.AmountMinor, r.Amount, currency, false)
	if err != nil {
		return domain.OperationPatch{}, err
	}

	switch kind {
	case domain.Deposit:
		if r.ValueDate != nil {
			return domain.OperationPatch{}, fmt.Errorf("%w: the value date of a deposit cannot change", apperrors.ErrValidation)
		}
		if r.Beneficiary != nil || r.Purpose != nil {
			return domain.OperationPatch{}, fmt.Errorf("%w: beneficiary and purpose only apply to withdrawals", apperrors.ErrValidation)
		}
		return domain.OperationPatch{Deposit: &domain.DepositPatch{
			AmountMinor: amountMinor,
			Payer:       r.Payer,
			Motive:      r.Motive,
			Mode:        r.Mode,
		}}, nil
	case domain.Withdrawal:
		if r.Payer != nil || r.Motive != nil {
			return domain.OperationPatch{}, fmt.Errorf("%w: payer and motive only apply to deposits", apperrors.ErrValidation)
		}
		var valueDate *time.Time
		if r.ValueDate != nil {
			d, err := parseDate(*r.ValueDate)
			if err != nil {
				return domain.OperationPatch{}, err
			}
			valueDate = &d
		}
		return domain.OperationPatch{Withdrawal: &domain.WithdrawalPatch{
			AmountMinor: amountMinor,
			ValueDate:   valueDate,
			Beneficiary: r.Beneficiary,
			Purpose:     r.Purpose,
			Mode:        r.Mode,
		}}, nil
	}
	return domain.OperationPatch{}, fmt.Errorf("%w: unknown operation kind %q", apperrors.ErrValidation, kind)
}

// DecideRequest defines the body of an approval or rejection.
type DecideRequest struct {
	Decision domain.OperationStatus `json:"decision" binding:"required,caisse_decision" enums:"APPROUVE,REJETE"`
}

// ListOperationsParams defines query parameters for searching operations.
type ListOperationsParams struct {
	Status        string `form:"status" binding:"omitempty,caisse_status"`
	Kind          string `form:"kind" binding:"omitempty,caisse_kind"`
	Currency      string `form:"currency" binding:"omitempty,caisse_currency"`
	Query         string `form:"q" binding:"max=200"`
	ValueDateFrom string `form:"valueDateFrom" binding:"omitempty,datetime=2006-01-02"`
	ValueDateTo   string `form:"valueDateTo" binding:"omitempty,datetime=2006-01-02"`
	MinAmount     *int64 `form:"minAmount" binding:"omitempty,min=0"`
	MaxAmount     *int64 `form:"maxAmount" binding:"omitempty,min=0"`
	SortBy        string `form:"sortBy,default=createdAt" binding:"oneof=createdAt valueDate amountMinor reference"`
	Order         string `form:"order,default=desc" binding:"oneof=asc desc"`
	Page          int    `form:"page,default=1" binding:"min=1"`
	PageSize      int    `form:"pageSize,default=20" binding:"min=1,max=200"`
}

// ToFilter converts query parameters into a search filter.
func (p ListOperationsParams) ToFilter() (domain.OperationFilter, error) {
	f := domain.OperationFilter{
		Query:     strings.TrimSpace(p.Query),
		MinAmount: p.MinAmount,
		MaxAmount: p.MaxAmount,
		SortBy:    p.SortBy,
		Ascending: p.Order == "asc",
		Page:      p.Page,
		PageSize:  p.PageSize,
	}
	if p.Status != "" {
		status := domain.OperationStatus(p.Status)
		f.Status = &status
	}
	if p.Kind != "" {
		kind := domain.OperationKind(p.Kind)
		f.Kind = &kind
	}
	if p.Currency != "" {
		currency, _ := domain.ParseCurrency(p.Currency)
		f.Currency = &currency
	}
	if p.ValueDateFrom != "" {
		d, err := parseDate(p.ValueDateFrom)
		if err != nil {
			return f, err
		}
		f.ValueDateFrom = &d
	}
	if p.ValueDateTo != "" {
		d, err := parseDate(p.ValueDateTo)
		if err != nil {
			return f, err
		}
		f.ValueDateTo = &d
	}
	if f.ValueDateFrom != nil && f.ValueDateTo != nil && f.ValueDateTo.Before(*f.ValueDateFrom) {
		return f, fmt.Errorf("%w: valueDateTo is before valueDateFrom", apperrors.ErrValidation)
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MaxAmount < *f.MinAmount {
		return f, fmt.Errorf("%w: maxAmount is below minAmount", apperrors.ErrValidation)
	}
	return f, nil
}

// OperationResponse is the public view of an operation. Amount repeats amountMinor in major units.
type OperationResponse struct {
	ID          string                 `json:"id"`
	Kind        domain.OperationKind   `json:"kind"`
	Currency    domain.Currency        `json:"currency"`
	AmountMinor int64                  `json:"amountMinor"`
	Amount      string                 `json:"amount" example:"1250.50"`
	ValueDate   string                 `json:"valueDate" example:"2024-05-31"`
	Reference   string                 `json:"reference" example:"VER-20240531-7KQ2ZP"`
	Status      domain.OperationStatus `json:"status"`
	CreatedBy   string                 `json:"createdBy"`
	Edited      bool                   `json:"edited"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
	CanceledAt  *time.Time             `json:"canceledAt,omitempty"`
	Payer       string                 `json:"payer,omitempty"`
	Motive      string                 `json:"motive,omitempty"`
	Beneficiary string                 `json:"beneficiary,omitempty"`
	Purpose     string                 `json:"purpose,omitempty"`
	Mode        string                 `json:"mode,omitempty"`
}

// ListOperationsResponse is one page of a search.
type ListOperationsResponse struct {
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
	Items    []OperationResponse `json:"items"`
}

// ToOperationResponse converts a domain.Operation to its public view.
func ToOperationResponse(op *domain.Operation) OperationResponse {
	return OperationResponse{
		ID:          op.ID,
		Kind:        op.Kind,
		Currency:    op.Currency,
		AmountMinor: op.AmountMinor,
		Amount:      utils.FormatMinor(op.AmountMinor, op.Currency),
		ValueDate:   op.ValueDate.Format(time.DateOnly),
		Reference:   op.Reference,
		Status:      op.Status,
		CreatedBy:   op.CreatedBy,
		Edited:      op.Edited,
		CreatedAt:   op.CreatedAt,
		UpdatedAt:   op.UpdatedAt,
		CanceledAt:  op.CanceledAt,
		Payer:       op.Payer,
		Motive:      op.Motive,
		Beneficiary: op.Beneficiary,
		Purpose:     op.Purpose,
		Mode:        op.Mode,
	}
}

// ToListOperationsResponse converts a search page.
func ToListOperationsResponse(page *domain.OperationPage) ListOperationsResponse {
	items := make([]OperationResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToOperationResponse(&page.Items[i])
	}
	return ListOperationsResponse{
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Items:    items,
	}
}

// resolveAmount picks amountMinor or converts the decimal amount. With required set, one of them must be present.
func resolveAmount(amountMinor *int64, amount *decimal.Decimal, currency domain.Currency, required bool) (*int64, error) {
	switch {
	case amountMinor != nil && amount != nil:
		return nil, fmt.Errorf("%w: give either amountMinor or amount, not both", apperrors.ErrValidation)
	case amountMinor != nil:
		return amountMinor, nil
	case amount != nil:
		minor, err := utils.DecimalToMinor(*amount, currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		return &minor, nil
	case required:
		return nil, fmt.Errorf("%w: amountMinor or amount is required", apperrors.ErrValidation)
	}
	return nil, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", apperrors.ErrValidation, s)
	}
	return d, nil
}
