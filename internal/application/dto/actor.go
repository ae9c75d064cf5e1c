package dto

import "github.com/jhoicas/suministros-api/internal/domain/entity"

// Actor identidad del llamador, extraída de los claims del token por el
// middleware y propagada a los casos de uso.
type Actor struct {
	ID           string
	Name         string
	DepartmentID string
	Role         string
}

// IsSuperAdmin indica si el actor ve todos los departamentos.
func (a Actor) IsSuperAdmin() bool { return a.Role == entity.RoleSuperAdmin }

// CanAccessDepartment indica si el actor puede tocar registros del departamento.
func (a Actor) CanAccessDepartment(departmentID string) bool {
	return a.IsSuperAdmin() || a.DepartmentID == departmentID
}
