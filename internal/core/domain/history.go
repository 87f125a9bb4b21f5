package domain

import "time"

// History verbs; the stored action is "<verb>_<kind>", e.g. "DECIDE_RETRAIT".
const (
	VerbAdd    = "ADD"
	VerbUpdate = "UPDATE"
	VerbCancel = "CANCEL"
	VerbDecide = "DECIDE"
)

// HistoryAction builds the stored action name for a verb and an operation kind.
func HistoryAction(verb string, kind OperationKind) string {
	return verb + "_" + string(kind)
}

// HistoryEntry is an immutable audit record of one accepted lifecycle transition.
type HistoryEntry struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	ActorID       string         `json:"actorId"`
	Action        string         `json:"action"`
	OperationID   string         `json:"operationId"`
	OperationKind OperationKind  `json:"operationKind"`
	Currency      Currency       `json:"currency"`
	AmountMinor   int64          `json:"amountMinor"`
	Note          string         `json:"note,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`

	// OperationRef is resolved on read: the operation reference, or OperationID when it cannot be resolved.
	OperationRef string `json:"operationRef"`
}

// HistoryFilter narrows a history search.
type HistoryFilter struct {
	Kind        *OperationKind
	Currency    *Currency
	ActorID     string
	OperationID string
	Query       string // matches reference, payer, beneficiary, motive/purpose
}
