package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/suministros-api/pkg/logger"
	"github.com/jhoicas/suministros-api/pkg/metrics"
)

// DedupStore evita notificaciones duplicadas para el mismo (item, tipo) y
// limpia las de otros tipos cuando una nueva las reemplaza.
//
// El patrón check-then-act (Exists y luego Create) no es atómico: dos
// mutaciones concurrentes sobre el mismo item pueden crear un duplicado
// transitorio del mismo tipo. Es una carrera aceptada; el gateway no ofrece
// restricción de unicidad sobre los tags.
type DedupStore struct {
	gateway NotificationGateway
	log     *logger.Logger
	met     *metrics.Metrics
}

// NewDedupStore construye el store sobre el gateway de notificaciones.
func NewDedupStore(gateway NotificationGateway, log *logger.Logger, met *metrics.Metrics) *DedupStore {
	return &DedupStore{gateway: gateway, log: log, met: met}
}

// dedupTag devuelve el valor estable del tag de deduplicación para (item, tipo).
func dedupTag(itemID string, kind Kind) string {
	return fmt.Sprintf("%s:%s", itemID, kind)
}

// tagKey devuelve la clave del tag privado según el tipo de alerta.
func tagKey(kind Kind) string {
	if kind == KindRestocked {
		return TagRestockID
	}
	return TagAlertID
}

// kindOf infiere el tipo de alerta a partir de los tags de una entrada.
// Devuelve "" si la entrada no tiene los tags esperados.
func kindOf(e Entry) Kind {
	if v, ok := e.Private[TagRestockID]; ok && v != "" {
		return KindRestocked
	}
	v := e.Private[TagAlertID]
	if i := strings.LastIndexByte(v, ':'); i >= 0 {
		switch Kind(v[i+1:]) {
		case KindLowStock:
			return KindLowStock
		case KindOutOfStock:
			return KindOutOfStock
		}
	}
	return ""
}

// Exists consulta si ya hay una entrada viva para (itemID, kind).
// Un fallo del gateway se registra y se trata como "no encontrada": la mutación
// en curso no debe romperse por una consulta de deduplicación.
func (s *DedupStore) Exists(ctx context.Context, itemID string, kind Kind) bool {
	entries, err := s.gateway.List(ctx, map[string]string{
		TagItemID:    itemID,
		tagKey(kind): dedupTag(itemID, kind),
	})
	if err != nil {
		s.met.GatewayErrors.Inc()
		s.log.Error().Err(err).
			Str("item_id", itemID).
			Str("kind", string(kind)).
			Msg("consulta de deduplicación al gateway falló; se asume inexistente")
		return false
	}
	return len(entries) > 0
}

// Create registra la entrada en el gateway con sus tags de deduplicación.
// No re-verifica existencia; el check-then-act lo orquesta el motor de
// transiciones. El error se registra y se devuelve solo para métricas/log del
// llamador, nunca para abortar la mutación.
func (s *DedupStore) Create(ctx context.Context, itemID string, kind Kind, summary, description string, now time.Time) error {
	entry := Entry{
		Summary:     summary,
		Description: description,
		Private: map[string]string{
			TagItemID:    itemID,
			tagKey(kind): dedupTag(itemID, kind),
		},
		Start: now,
		End:   now.Add(time.Hour),
	}
	if _, err := s.gateway.Create(ctx, entry); err != nil {
		s.met.GatewayErrors.Inc()
		s.log.Error().Err(err).
			Str("item_id", itemID).
			Str("kind", string(kind)).
			Msg("creación de alerta en el gateway falló; la notificación se omite")
		return err
	}
	s.met.AlertsCreated.WithLabelValues(string(kind)).Inc()
	return nil
}

// RetireOthers elimina toda entrada viva del item cuyo tipo no sea keepKind.
// Limpieza best-effort: errores de listado o borrado se registran y se
// continúa; nunca bloquea la mutación que la disparó.
func (s *DedupStore) RetireOthers(ctx context.Context, itemID string, keepKind Kind) {
	entries, err := s.gateway.List(ctx, map[string]string{TagItemID: itemID})
	if err != nil {
		s.met.GatewayErrors.Inc()
		s.log.Error().Err(err).
			Str("item_id", itemID).
			Msg("listado de alertas para retiro falló; se omite la limpieza")
		return
	}
	for _, e := range entries {
		if kindOf(e) == keepKind {
			continue
		}
		if err := s.gateway.Delete(ctx, e.ID); err != nil {
			s.met.GatewayErrors.Inc()
			s.log.Error().Err(err).
				Str("item_id", itemID).
				Str("entry_id", e.ID).
				Msg("borrado de alerta obsoleta falló")
			continue
		}
		s.met.AlertsRetired.Inc()
	}
}
