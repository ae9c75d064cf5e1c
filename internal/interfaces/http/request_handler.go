package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/request"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// RequestHandler maneja las peticiones HTTP de solicitudes de suministro.
type RequestHandler struct {
	uc *request.UseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *request.UseCase) *RequestHandler {
	return &RequestHandler{uc: uc}
}

func toRequestResponse(r *entity.SupplyRequest) dto.SupplyRequestResponse {
	return dto.SupplyRequestResponse{
		ID:            r.ID,
		ItemID:        r.ItemID,
		RequesterID:   r.RequesterID,
		RequesterName: r.RequesterName,
		Quantity:      r.Quantity,
		Status:        r.Status,
		Note:          r.Note,
		DecidedBy:     r.DecidedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Create godoc
// @Summary      Crear solicitud de insumos
// @Description  Requiere token reCAPTCHA del formulario. Queda pendiente hasta decisión de un admin.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      201  {object}  dto.SupplyRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSupplyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toRequestResponse(req))
}

// List godoc
// @Summary      Listar solicitudes
// @Description  El personal ve sus propias solicitudes; los admins, las del departamento.
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | approved | rejected | delivered"
// @Success      200  {array}  dto.SupplyRequestResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()

	reqs, err := h.uc.List(c.Context(), GetActor(c), entity.RequestFilter{
		Status: c.Query("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]dto.SupplyRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toRequestResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "requests": out})
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Description  Descuenta stock con guarda de no-negatividad; 409 si el stock no alcanza.
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	if err := h.uc.Approve(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Param        id    path  string             true  "ID de la solicitud"
// @Param        body  body  dto.DecideRequest  false "Motivo del rechazo"
// @Success      204
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.DecideRequest
	_ = c.BodyParser(&in)
	if err := h.uc.Reject(c.Context(), GetActor(c), c.Params("id"), in.Note); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Deliver godoc
// @Summary      Marcar solicitud como entregada
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      204
// @Router       /api/requests/{id}/deliver [post]
func (h *RequestHandler) Deliver(c *fiber.Ctx) error {
	if err := h.uc.Deliver(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
