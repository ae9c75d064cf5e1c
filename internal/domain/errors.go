package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrArchived          = errors.New("el registro está archivado")
	ErrCaptchaRejected   = errors.New("verificación captcha rechazada")
)

// LockConflictError indica que otro titular tiene el lock de edición vigente.
// Holder es el nombre visible del titular actual, para mostrarlo al usuario.
type LockConflictError struct {
	Holder string
}

func (e *LockConflictError) Error() string {
	return fmt.Sprintf("registro en edición por %s", e.Holder)
}

// AsLockConflict extrae un *LockConflictError de err, si lo es.
func AsLockConflict(err error) (*LockConflictError, bool) {
	var lc *LockConflictError
	if errors.As(err, &lc) {
		return lc, true
	}
	return nil, false
}
