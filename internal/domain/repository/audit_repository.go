package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// AuditRepository define el puerto de persistencia para el historial de auditoría.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error)
}
