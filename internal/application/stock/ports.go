package stock

import (
	"context"
	"time"
)

// Kind tipo de alerta de stock. Para un item dado, a lo sumo una de las tres
// puede estar viva en el gateway en un instante.
type Kind string

const (
	KindLowStock   Kind = "low_stock"
	KindOutOfStock Kind = "out_of_stock"
	KindRestocked  Kind = "restocked"
)

// Claves de los tags privados que llevan las entradas del gateway.
// itemId siempre; alertId para low/out, restockId para restocked.
const (
	TagItemID    = "itemId"
	TagAlertID   = "alertId"
	TagRestockID = "restockId"
)

// Entry entrada de notificación en el gateway (evento de calendario abstraído).
// Private es el mapa de tags usado como clave de deduplicación.
type Entry struct {
	ID          string
	Summary     string
	Description string
	Private     map[string]string
	Start       time.Time
	End         time.Time
}

// NotificationGateway puerto hacia el servicio externo de notificaciones.
// Toda llamada es I/O de red acotada por timeout; los errores se degradan en el
// llamador, nunca abortan la mutación de inventario que los disparó.
type NotificationGateway interface {
	List(ctx context.Context, privateTags map[string]string) ([]Entry, error)
	Create(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, entryID string) error
}
