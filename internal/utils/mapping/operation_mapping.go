package mapping

import (
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/models"
)

// ToModelOperation converts a domain Operation to its persisted form
func ToModelOperation(d domain.Operation) models.Operation {
	return models.Operation{
		OperationID: d.ID,
		Kind:        string(d.Kind),
		Currency:    string(d.Currency),
		AmountMinor: d.AmountMinor,
		ValueDate:   d.ValueDate,
		Reference:   d.Reference,
		Status:      string(d.Status),
		CreatedBy:   d.CreatedBy,
		Edited:      d.Edited,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		CanceledAt:  d.CanceledAt,
		Payer:       d.Payer,
		Motive:      d.Motive,
		Beneficiary: d.Beneficiary,
		Purpose:     d.Purpose,
		Mode:        d.Mode,
	}
}

// ToDomainOperation converts a persisted operation to the domain type
func ToDomainOperation(m models.Operation) domain.Operation {
	return domain.Operation{
		ID:          m.OperationID,
		Kind:        domain.OperationKind(m.Kind),
		Currency:    domain.Currency(m.Currency),
		AmountMinor: m.AmountMinor,
		ValueDate:   m.ValueDate,
		Reference:   m.Reference,
		Status:      domain.OperationStatus(m.Status),
		CreatedBy:   m.CreatedBy,
		Edited:      m.Edited,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CanceledAt:  m.CanceledAt,
		Payer:       m.Payer,
		Motive:      m.Motive,
		Beneficiary: m.Beneficiary,
		Purpose:     m.Purpose,
		Mode:        m.Mode,
	}
}

// ToModelHistoryEntry converts a domain HistoryEntry to its persisted form
func ToModelHistoryEntry(d domain.HistoryEntry) models.HistoryEntry {
	return models.HistoryEntry{
		HistoryID:     d.ID,
		CreatedAt:     d.Timestamp,
		ActorID:       d.ActorID,
		Action:        d.Action,
		OperationID:   d.OperationID,
		OperationKind: string(d.OperationKind),
		Currency:      string(d.Currency),
		AmountMinor:   d.AmountMinor,
		Note:          d.Note,
		Meta:          d.Meta,
	}
}

// ToDomainHistoryEntry converts a persisted history row, resolving the operation reference
// and falling back to the raw operation id.
func ToDomainHistoryEntry(m models.HistoryEntry) domain.HistoryEntry {
	ref := m.OperationID
	if m.Reference != nil && *m.Reference != "" {
		ref = *m.Reference
	}
	return domain.HistoryEntry{
		ID:            m.HistoryID,
		Timestamp:     m.CreatedAt,
		ActorID:       m.ActorID,
		Action:        m.Action,
		OperationID:   m.OperationID,
		OperationKind: domain.OperationKind(m.OperationKind),
		Currency:      domain.Currency(m.Currency),
		AmountMinor:   m.AmountMinor,
		Note:          m.Note,
		Meta:          m.Meta,
		OperationRef:  ref,
	}
}
