package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// UserHandler maneja la administración de cuentas y su lock de edición.
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

func toUserResponse(u *entity.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:           u.ID,
		DepartmentID: u.DepartmentID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Status:       u.Status,
		Archived:     u.Archived,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	// Un lock vencido es ausente: la UI no debe mostrar "en edición por X"
	// con un lock que el siguiente acceso limpiará.
	if !u.LockExpired(time.Now()) {
		resp.LockedBy = u.LockedBy
		resp.LockExpiresAt = u.LockExpiresAt
	}
	return resp
}

// List godoc
// @Summary      Listar cuentas
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UserResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()

	users, err := h.uc.List(c.Context(), GetActor(c), c.QueryBool("archived"), page.Limit, page.Offset)
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(fiber.Map{"total": len(out), "users": out})
}

// Create godoc
// @Summary      Alta de cuenta (solo superadmin)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      201  {object}  dto.UserResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	user, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// Update godoc
// @Summary      Editar cuenta
// @Description  Requiere tener el lock de edición vigente; 409 con el nombre del titular si lo tiene otro admin.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.UserResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	user, err := h.uc.Update(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// Archive godoc
// @Summary      Archivar cuenta (solo superadmin)
// @Description  Fuerza la liberación del lock de edición sea quien sea el titular.
// @Tags         users
// @Security     Bearer
// @Param        id  path  string  true  "ID de la cuenta"
// @Success      204
// @Router       /api/users/{id}/archive [post]
func (h *UserHandler) Archive(c *fiber.Ctx) error {
	if err := h.uc.Archive(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Lock godoc
// @Summary      Adquirir (o refrescar) el lock de edición de una cuenta
// @Description  Lock de 5 minutos; 409 con el nombre del titular si otro admin lo tiene vigente.
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.LockResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/lock [post]
func (h *UserHandler) Lock(c *fiber.Ctx) error {
	actor := GetActor(c)
	id := c.Params("id")
	state, err := h.uc.Locks().Acquire(c.Context(), id, actor.Name)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.LockResponse{
		RecordID:  id,
		Holder:    *state.LockedBy,
		ExpiresAt: *state.LockExpiresAt,
	})
}

// Unlock godoc
// @Summary      Liberar el lock de edición
// @Description  Solo el titular puede liberar; 403 en caso contrario.
// @Tags         users
// @Security     Bearer
// @Param        id  path  string  true  "ID de la cuenta"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/lock [delete]
func (h *UserHandler) Unlock(c *fiber.Ctx) error {
	actor := GetActor(c)
	if err := h.uc.Locks().Release(c.Context(), c.Params("id"), actor.Name); err != nil {
		return mapDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
