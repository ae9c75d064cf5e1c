package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// RequestRepository define el puerto de persistencia para SupplyRequest (DIP).
type RequestRepository interface {
	Create(ctx context.Context, req *entity.SupplyRequest) error
	GetByID(ctx context.Context, id string) (*entity.SupplyRequest, error)
	List(ctx context.Context, filter entity.RequestFilter) ([]*entity.SupplyRequest, error)

	// UpdateStatus transiciona la solicitud solo si su estado actual es
	// fromStatus (check-and-set en el almacén); si no, domain.ErrConflict.
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus, decidedBy, note string) error
}
