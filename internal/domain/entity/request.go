package entity

import "time"

// Estados de una solicitud de suministro.
// pending -> approved | rejected; approved -> delivered.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestDelivered = "delivered"
)

// SupplyRequest solicitud de insumos hecha por personal del departamento.
// La aprobación descuenta stock del item; el rechazo no toca inventario.
type SupplyRequest struct {
	ID            string
	DepartmentID  string
	ItemID        string
	RequesterID   string
	RequesterName string
	Quantity      int
	Status        string
	Note          string // justificación del solicitante o motivo de rechazo
	DecidedBy     string // admin que aprobó/rechazó
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RequestFilter criterios de listado de solicitudes.
type RequestFilter struct {
	DepartmentID string
	RequesterID  string
	Status       string
	Limit        int
	Offset       int
}
