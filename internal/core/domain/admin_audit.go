package domain

import "time"

const (
	AdminActionApproveUser = "APPROVE_USER"
	AdminActionSetRole     = "SET_ROLE"
	AdminActionDeleteUser  = "DELETE_USER"
)

// AdminAuditEntry records an administrative action on user accounts.
type AdminAuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actorId"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload,omitempty"`
}
