package dto

import "time"

// CreateUserRequest alta de una cuenta (solo superadmin).
type CreateUserRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
	Role         string `json:"role"`
}

// UpdateUserRequest edición de una cuenta; requiere tener el lock de edición.
type UpdateUserRequest struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UserResponse representación de una cuenta en respuestas. El estado del lock
// viaja para que la UI muestre "en edición por X".
type UserResponse struct {
	ID            string     `json:"id"`
	DepartmentID  string     `json:"department_id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	Archived      bool       `json:"archived"`
	LockedBy      *string    `json:"locked_by,omitempty"`
	LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LockResponse resultado de adquirir el lock de edición.
type LockResponse struct {
	RecordID  string    `json:"record_id"`
	Holder    string    `json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
}
