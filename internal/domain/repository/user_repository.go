package repository

import (
	"context"
	"time"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los campos de lock viven en el propio documento del usuario; el manager de
// locks los lee y escribe a través de SetLock/ClearLock.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, departmentID string, includeArchived bool, limit, offset int) ([]*entity.User, error)
	SetArchived(ctx context.Context, id string, archived bool) error

	SetLock(ctx context.Context, id, holder string, expiresAt time.Time) error
	ClearLock(ctx context.Context, id string) error
}
