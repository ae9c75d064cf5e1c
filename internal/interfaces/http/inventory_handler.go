package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/inventory"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de insumos (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

func toItemResponse(item *entity.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Unit:      item.Unit,
		Quantity:  item.Quantity,
		Status:    string(item.Status),
		Archived:  item.Archived,
		Version:   item.Version,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// List godoc
// @Summary      Listar insumos
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "Filtrar por categoría"
// @Param        archived  query  bool    false  "Incluir archivados"
// @Success      200  {array}  dto.ItemResponse
// @Router       /api/items [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()

	items, err := h.uc.ListItems(c.Context(), GetActor(c), entity.ItemFilter{
		Category:        c.Query("category"),
		IncludeArchived: c.QueryBool("archived"),
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// ListLowStock godoc
// @Summary      Insumos con stock limitado o agotado
// @Description  Datos base del reporte de bajo stock (el render del PDF lo hace otro servicio).
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ItemResponse
// @Router       /api/items/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	items, err := h.uc.ListItems(c.Context(), GetActor(c), entity.ItemFilter{OnlyLowStock: true})
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// Create godoc
// @Summary      Alta de insumo
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      201  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.CreateItem(c.Context(), GetActor(c), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toItemResponse(item))
}

// GetByID godoc
// @Summary      Detalle de insumo
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del insumo"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.uc.GetItem(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toItemResponse(item))
}

// Update godoc
// @Summary      Editar campos descriptivos del insumo
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID del insumo"
// @Success      200  {object}  dto.ItemResponse
// @Router       /api/items/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.UpdateItem(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toItemResponse(item))
}

// Restock godoc
// @Summary      Reposición de stock
// @Description  Suma amount de forma atómica y evalúa alertas de transición de estado.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del insumo"
// @Param        body  body  dto.RestockRequest  true  "amount > 0"
// @Success      200  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	var in dto.RestockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.Restock(c.Context(), GetActor(c), c.Params("id"), in.Amount)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toItemResponse(item))
}

// SetQuantity godoc
// @Summary      Ajuste absoluto de cantidad
// @Description  Fija la cantidad con control optimista de versión; 409 si la versión no coincide.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del insumo"
// @Param        body  body  dto.SetQuantityRequest  true  "quantity >= 0, version actual"
// @Success      200  {object}  dto.ItemResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/quantity [put]
func (h *InventoryHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.SetQuantity(c.Context(), GetActor(c), c.Params("id"), in.Quantity, in.Version)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toItemResponse(item))
}

// Archive godoc
// @Summary      Archivar insumo (borrado lógico)
// @Tags         items
// @Security     Bearer
// @Param        id  path  string  true  "ID del insumo"
// @Success      204
// @Router       /api/items/{id}/archive [post]
func (h *InventoryHandler) Archive(c *fiber.Ctx) error {
	if err := h.uc.Archive(c.Context(), GetActor(c), c.Params("id"), true); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Unarchive godoc
// @Summary      Restaurar insumo archivado
// @Tags         items
// @Security     Bearer
// @Param        id  path  string  true  "ID del insumo"
// @Success      204
// @Router       /api/items/{id}/unarchive [post]
func (h *InventoryHandler) Unarchive(c *fiber.Ctx) error {
	if err := h.uc.Archive(c.Context(), GetActor(c), c.Params("id"), false); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
