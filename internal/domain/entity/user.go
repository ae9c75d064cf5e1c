package entity

import "time"

// Roles válidos para User.
const (
	RoleStaff      = "staff"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User representa una cuenta del sistema (pertenece a un departamento).
// LockedBy/LockExpiresAt implementan el lock de edición de corta vida: si dos
// admins abren la misma cuenta, el segundo ve quién la tiene. Un lock con
// expiración pasada se considera ausente (expiración perezosa).
type User struct {
	ID            string
	DepartmentID  string
	Email         string
	Name          string
	Role          string // staff, admin, superadmin
	Status        string // active, inactive
	Archived      bool
	LockedBy      *string
	LockExpiresAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LockExpired indica si el lock almacenado ya venció respecto a now.
// Un lock sin expiración se trata como vencido (estado inconsistente).
func (u *User) LockExpired(now time.Time) bool {
	if u.LockedBy == nil {
		return true
	}
	return u.LockExpiresAt == nil || u.LockExpiresAt.Before(now)
}
