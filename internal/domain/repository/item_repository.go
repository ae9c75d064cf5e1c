package repository

import (
	"context"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/stock"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
// Las mutaciones de cantidad son atómicas a nivel de documento: los deltas usan
// el incremento nativo del almacén y los sets absolutos van con check de versión.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error

	// IncrementQuantity suma delta de forma atómica y devuelve la cantidad
	// anterior y la nueva. Con guardMin >= 0 la operación solo aplica si la
	// cantidad actual es >= guardMin (p. ej. guardMin = delta negado para que
	// el stock nunca quede negativo); si la guarda falla devuelve
	// domain.ErrInsufficientStock. guardMin < 0 desactiva la guarda.
	IncrementQuantity(ctx context.Context, id string, delta int, guardMin int) (prev, next int, err error)

	// SetQuantity fija la cantidad de forma absoluta con control optimista:
	// solo aplica si la versión almacenada coincide; si no, domain.ErrConflict.
	SetQuantity(ctx context.Context, id string, quantity int, expectedVersion int64) error

	// SetStatus persiste el estado derivado tras una mutación de cantidad.
	SetStatus(ctx context.Context, id string, status stock.Status) error

	SetArchived(ctx context.Context, id string, archived bool) error
}
