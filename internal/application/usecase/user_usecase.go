package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/lock"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// UserUseCase administración de cuentas. La edición exige tener el lock del
// registro (dos admins no editan la misma cuenta a la vez); archivar la cuenta
// fuerza la liberación del lock sea de quien sea.
type UserUseCase struct {
	users repository.UserRepository
	audit repository.AuditRepository
	locks *lock.Manager
	log   *logger.Logger
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(
	users repository.UserRepository,
	audit repository.AuditRepository,
	locks *lock.Manager,
	log *logger.Logger,
) *UserUseCase {
	return &UserUseCase{users: users, audit: audit, locks: locks, log: log}
}

// Locks expone el manager para los endpoints de lock/unlock.
func (uc *UserUseCase) Locks() *lock.Manager { return uc.locks }

// Create da de alta una cuenta (solo superadmin; el RBAC lo aplica la ruta).
func (uc *UserUseCase) Create(ctx context.Context, actor dto.Actor, in dto.CreateUserRequest) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.Name) == "" || in.DepartmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.Role {
	case entity.RoleStaff, entity.RoleAdmin, entity.RoleSuperAdmin:
	default:
		return nil, domain.ErrInvalidInput
	}
	if existing, err := uc.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		DepartmentID: in.DepartmentID,
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, actor, "user.create", user.ID, fmt.Sprintf("alta de %s (%s)", user.Email, user.Role))
	return user, nil
}

// List lista cuentas del departamento del actor (todas para superadmin).
func (uc *UserUseCase) List(ctx context.Context, actor dto.Actor, includeArchived bool, limit, offset int) ([]*entity.User, error) {
	departmentID := actor.DepartmentID
	if actor.IsSuperAdmin() {
		departmentID = ""
	}
	return uc.users.List(ctx, departmentID, includeArchived, limit, offset)
}

// Update edita una cuenta. El actor debe tener el lock de edición vigente; si
// lo tiene otro, el error lleva su nombre para la UI.
func (uc *UserUseCase) Update(ctx context.Context, actor dto.Actor, id string, in dto.UpdateUserRequest) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDepartment(user.DepartmentID) {
		return nil, domain.ErrForbidden
	}
	if user.Archived {
		return nil, domain.ErrArchived
	}

	holder, err := uc.locks.HeldBy(ctx, id)
	if err != nil {
		return nil, err
	}
	if holder == "" {
		return nil, domain.ErrConflict // editar sin lock adquirido
	}
	if holder != actor.Name {
		return nil, &domain.LockConflictError{Holder: holder}
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if in.Role != "" {
		switch in.Role {
		case entity.RoleStaff, entity.RoleAdmin, entity.RoleSuperAdmin:
			user.Role = in.Role
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Status != "" {
		user.Status = in.Status
	}
	user.UpdatedAt = time.Now()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, actor, "user.update", user.ID, fmt.Sprintf("edición de %s", user.Email))
	return user, nil
}

// Archive archiva la cuenta y fuerza la liberación de su lock de edición,
// sea quien sea el titular: el registro sale del conjunto editable.
func (uc *UserUseCase) Archive(ctx context.Context, actor dto.Actor, id string) error {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccessDepartment(user.DepartmentID) {
		return domain.ErrForbidden
	}
	if err := uc.users.SetArchived(ctx, id, true); err != nil {
		return err
	}
	if err := uc.locks.ForceRelease(ctx, id); err != nil {
		uc.log.Error().Err(err).Str("user_id", id).Msg("liberación forzada del lock falló")
	}
	uc.writeAudit(ctx, actor, "user.archive", id, user.Email)
	return nil
}

func (uc *UserUseCase) writeAudit(ctx context.Context, actor dto.Actor, action, entityID, detail string) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		Actor:      actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityKind: "user",
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		uc.log.Error().Err(err).Str("action", action).Msg("escritura de auditoría falló")
	}
}
