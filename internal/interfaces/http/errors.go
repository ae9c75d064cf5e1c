package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain"
)

// mapDomainError traduce los errores de dominio al código HTTP equivalente.
// Los resultados esperados (lock en conflicto, stock insuficiente) son ramas
// normales, no 500.
func mapDomainError(c *fiber.Ctx, err error) error {
	if conflict, ok := domain.AsLockConflict(err); ok {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "LOCKED_BY_OTHER",
			Message: "registro en edición por " + conflict.Holder,
		})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrArchived):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ARCHIVED", Message: "el registro está archivado"})
	case errors.Is(err, domain.ErrCaptchaRejected):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CAPTCHA_REJECTED", Message: "verificación captcha rechazada"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
