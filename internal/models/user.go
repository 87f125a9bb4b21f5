package models

import "time"

// User is the persisted form of an application account.
type User struct {
	UserID       string `db:"user_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
	Approved     bool   `db:"approved"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}

// AdminAudit is the persisted form of an administrative action.
type AdminAudit struct {
	AuditID   string         `db:"audit_id"`
	CreatedAt time.Time      `db:"created_at"`
	ActorID   string         `db:"actor_id"`
	Action    string         `db:"action"`
	Payload   map[string]any `db:"payload"`
}
