package entity

import (
	"time"

	"github.com/jhoicas/suministros-api/internal/domain/stock"
)

// Item representa un insumo del inventario departamental.
// Status es siempre el derivado de Quantity por el clasificador; ningún mutador
// lo escribe de forma independiente. Version respalda los sets absolutos de
// cantidad con control optimista; los deltas van por incremento atómico y no
// tocan Version.
type Item struct {
	ID           string
	DepartmentID string
	Name         string
	Category     string
	Unit         string // unidad de medida: caja, resma, unidad...
	Quantity     int
	Status       stock.Status
	Archived     bool
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ItemFilter criterios de listado de items.
type ItemFilter struct {
	DepartmentID    string // vacío = todos (solo superadmin)
	Category        string
	IncludeArchived bool
	OnlyLowStock    bool // status != available
	Limit           int
	Offset          int
}
