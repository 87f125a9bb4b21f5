package domain

import "time"

// Role is what an account is allowed to do on the till.
type Role string

const (
	RoleDepositSubmitter    Role = "PERCEPTEUR"
	RoleWithdrawalSubmitter Role = "COMPTABLE"
	RoleDecider             Role = "MANAGER"
	RoleAdmin               Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDepositSubmitter, RoleWithdrawalSubmitter, RoleDecider, RoleAdmin:
		return true
	}
	return false
}

// User represents an account of the application.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	Approved     bool   `json:"approved"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Actor returns the descriptor the ledger authorizes against.
func (u User) Actor() Actor {
	return Actor{ID: u.UserID, Role: u.Role, Approved: u.Approved}
}

// Actor is the authenticated identity behind a ledger call.
type Actor struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Approved bool   `json:"approved"`
}

// IsAdmin reports whether the actor holds elevated privilege.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanDecide reports whether the actor may approve or reject operations.
func (a Actor) CanDecide() bool {
	return a.Role == RoleDecider || a.Role == RoleAdmin
}

// CanModify reports whether the actor may edit or cancel op.
func (a Actor) CanModify(op Operation) bool {
	return op.CreatedBy == a.ID || a.IsAdmin()
}
