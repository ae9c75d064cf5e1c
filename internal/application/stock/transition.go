package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/stock"
	"github.com/jhoicas/suministros-api/pkg/logger"
	"github.com/jhoicas/suministros-api/pkg/metrics"
)

// TransitionEngine decide qué notificar cuando cambia la cantidad de un item.
// Es la única política de alertas del sistema: reposición y degradación pasan
// por aquí, parametrizadas por tipo, para que ambos caminos no diverjan.
//
// Las alertas son una máquina de un solo slot por item: entrar a un tipo nuevo
// retira el que estuviera vivo. La ausencia de alerta viva equivale a "ninguna".
type TransitionEngine struct {
	dedup *DedupStore
	clock ports.Clock
	log   *logger.Logger
	met   *metrics.Metrics
}

// NewTransitionEngine construye el motor.
func NewTransitionEngine(dedup *DedupStore, clock ports.Clock, log *logger.Logger, met *metrics.Metrics) *TransitionEngine {
	return &TransitionEngine{dedup: dedup, clock: clock, log: log, met: met}
}

// OnQuantityChange evalúa la transición de estado tras una mutación de cantidad
// ya persistida. Todo fallo del gateway se degrada a "la notificación no
// ocurrió": nunca aborta ni revierte la mutación que lo disparó.
func (e *TransitionEngine) OnQuantityChange(ctx context.Context, item *entity.Item, prevQty, newQty int) {
	prevStatus := stock.Classify(prevQty)
	newStatus := stock.Classify(newQty)

	// Caso común: la cantidad se movió dentro del mismo estado. No-op barato,
	// sin llamadas al gateway.
	if prevStatus == newStatus {
		return
	}

	// Regla de reposición: entró a disponible desde cualquier otro estado.
	// Se evalúa primero para conservar la precedencia histórica.
	if newStatus == stock.StatusAvailable {
		summary := fmt.Sprintf("RESTOCKED: %s", item.Name)
		e.emit(ctx, item, KindRestocked, summary, prevQty, newQty, prevStatus, newStatus)
	}

	// Regla de degradación: cambió de estado hacia limitado o agotado.
	if newStatus == stock.StatusLimited || newStatus == stock.StatusOutOfStock {
		kind := KindLowStock
		prefix := "LOW STOCK"
		if newStatus == stock.StatusOutOfStock {
			kind = KindOutOfStock
			prefix = "OUT OF STOCK"
		}
		summary := fmt.Sprintf("%s: %s", prefix, item.Name)
		e.emit(ctx, item, kind, summary, prevQty, newQty, prevStatus, newStatus)
	}
}

// emit aplica el check de duplicado, crea la alerta y retira las de otros tipos.
func (e *TransitionEngine) emit(
	ctx context.Context,
	item *entity.Item,
	kind Kind,
	summary string,
	prevQty, newQty int,
	prevStatus, newStatus stock.Status,
) {
	if e.dedup.Exists(ctx, item.ID, kind) {
		e.met.AlertsSuppressed.WithLabelValues(string(kind)).Inc()
		e.log.Debug().
			Str("item_id", item.ID).
			Str("kind", string(kind)).
			Msg("alerta ya viva en el gateway; se omite el duplicado")
		return
	}

	description := fmt.Sprintf(
		"Insumo: %s\nCategoría: %s\nUnidad: %s\nCantidad: %d → %d\nTransición: %s → %s",
		item.Name, item.Category, item.Unit, prevQty, newQty, prevStatus, newStatus,
	)

	// Si la creación falla igual se intenta el retiro: la limpieza de alertas
	// obsoletas es independiente y best-effort.
	if err := e.dedup.Create(ctx, item.ID, kind, summary, description, e.clock.Now()); err == nil {
		e.log.Info().
			Str("item_id", item.ID).
			Str("kind", string(kind)).
			Str("transition", fmt.Sprintf("%s->%s", prevStatus, newStatus)).
			Msg("alerta de stock creada")
	}
	e.dedup.RetireOthers(ctx, item.ID, kind)
}
