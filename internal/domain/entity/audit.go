package entity

import "time"

// AuditEntry registro de auditoría de una mutación.
// La escritura es best-effort: un fallo al auditar se registra en el log pero
// nunca revierte la operación auditada.
type AuditEntry struct {
	ID         string
	Actor      string // user_id del token
	ActorName  string
	Action     string // item.restock, request.approve, user.archive...
	EntityKind string // item, request, user
	EntityID   string
	Detail     string
	CreatedAt  time.Time
}

// AuditFilter criterios de listado del historial de auditoría.
type AuditFilter struct {
	EntityKind string
	EntityID   string
	Actor      string
	Limit      int
	Offset     int
}
