package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// AuditHandler expone el historial de auditoría en solo lectura.
type AuditHandler struct {
	audit repository.AuditRepository
}

// NewAuditHandler construye el handler.
func NewAuditHandler(audit repository.AuditRepository) *AuditHandler {
	return &AuditHandler{audit: audit}
}

type auditEntryResponse struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	ActorName  string    `json:"actor_name"`
	Action     string    `json:"action"`
	EntityKind string    `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// List godoc
// @Summary      Historial de auditoría
// @Description  Listado paginado, más reciente primero. Filtrable por entidad y actor.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_kind  query  string  false  "item | request | user"
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Param        actor        query  string  false  "user_id del actor"
// @Success      200  {array}  auditEntryResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()

	entries, err := h.audit.List(c.Context(), entity.AuditFilter{
		EntityKind: c.Query("entity_kind"),
		EntityID:   c.Query("entity_id"),
		Actor:      c.Query("actor"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			Actor:      e.Actor,
			ActorName:  e.ActorName,
			Action:     e.Action,
			EntityKind: e.EntityKind,
			EntityID:   e.EntityID,
			Detail:     e.Detail,
			CreatedAt:  e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}
