package models

import "time"

// Operation is the persisted form of a till operation (table operations).
type Operation struct {
	OperationID string     `db:"operation_id"`
	Kind        string     `db:"kind"`
	Currency    string     `db:"currency"`
	AmountMinor int64      `db:"amount_minor"`
	ValueDate   time.Time  `db:"value_date"`
	Reference   string     `db:"reference"`
	Status      string     `db:"status"`
	CreatedBy   string     `db:"created_by"`
	Edited      bool       `db:"edited"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	CanceledAt  *time.Time `db:"canceled_at"`
	Payer       string     `db:"payer"`
	Motive      string     `db:"motive"`
	Beneficiary string     `db:"beneficiary"`
	Purpose     string     `db:"purpose"`
	Mode        string     `db:"mode"`
}

// HistoryEntry is the persisted form of an audit record (table history).
type HistoryEntry struct {
	HistoryID     string         `db:"history_id"`
	CreatedAt     time.Time      `db:"created_at"`
	ActorID       string         `db:"actor_id"`
	Action        string         `db:"action"`
	OperationID   string         `db:"operation_id"`
	OperationKind string         `db:"operation_kind"`
	Currency      string         `db:"currency"`
	AmountMinor   int64          `db:"amount_minor"`
	Note          string         `db:"note"`
	Meta          map[string]any `db:"meta"`
	// Reference is joined from operations on read; nil when the operation row is missing.
	Reference *string `db:"reference"`
}
