package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appstock "github.com/jhoicas/suministros-api/internal/application/stock"
	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/domain/stock"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// UseCase operaciones de inventario: altas, ediciones, reposición y archivado.
// Toda mutación de cantidad pasa por el motor de transiciones después de
// persistir; la evaluación de alertas nunca afecta el resultado de la mutación.
type UseCase struct {
	items  repository.ItemRepository
	audit  repository.AuditRepository
	engine *appstock.TransitionEngine
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	items repository.ItemRepository,
	audit repository.AuditRepository,
	engine *appstock.TransitionEngine,
	log *logger.Logger,
) *UseCase {
	return &UseCase{items: items, audit: audit, engine: engine, log: log}
}

// CreateItem da de alta un insumo. La cantidad inicial no puede ser negativa y
// el estado se deriva siempre del clasificador.
func (uc *UseCase) CreateItem(ctx context.Context, actor dto.Actor, in dto.CreateItemRequest) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Unit) == "" || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	item := &entity.Item{
		ID:           uuid.New().String(),
		DepartmentID: actor.DepartmentID,
		Name:         name,
		Category:     strings.TrimSpace(in.Category),
		Unit:         strings.TrimSpace(in.Unit),
		Quantity:     in.Quantity,
		Status:       stock.Classify(in.Quantity),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, actor, "item.create", item.ID,
		fmt.Sprintf("alta de %q con cantidad %d", item.Name, item.Quantity))
	return item, nil
}

// GetItem devuelve un insumo visible para el actor.
func (uc *UseCase) GetItem(ctx context.Context, actor dto.Actor, id string) (*entity.Item, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDepartment(item.DepartmentID) {
		return nil, domain.ErrForbidden
	}
	return item, nil
}

// ListItems lista insumos del departamento del actor (o de todos, superadmin).
func (uc *UseCase) ListItems(ctx context.Context, actor dto.Actor, filter entity.ItemFilter) ([]*entity.Item, error) {
	if !actor.IsSuperAdmin() {
		filter.DepartmentID = actor.DepartmentID
	}
	return uc.items.List(ctx, filter)
}

// UpdateItem edita los campos descriptivos; la cantidad no se toca por aquí.
func (uc *UseCase) UpdateItem(ctx context.Context, actor dto.Actor, id string, in dto.UpdateItemRequest) (*entity.Item, error) {
	item, err := uc.GetItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if item.Archived {
		return nil, domain.ErrArchived
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		item.Name = name
	}
	if cat := strings.TrimSpace(in.Category); cat != "" {
		item.Category = cat
	}
	if unit := strings.TrimSpace(in.Unit); unit != "" {
		item.Unit = unit
	}
	item.UpdatedAt = time.Now()
	if err := uc.items.Update(ctx, item); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, actor, "item.update", item.ID, fmt.Sprintf("edición de %q", item.Name))
	return item, nil
}

// Restock suma amount al stock de forma atómica y evalúa la transición.
func (uc *UseCase) Restock(ctx context.Context, actor dto.Actor, id string, amount int) (*entity.Item, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.GetItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if item.Archived {
		return nil, domain.ErrArchived
	}

	prev, next, err := uc.items.IncrementQuantity(ctx, id, amount, -1)
	if err != nil {
		return nil, err
	}
	if err := uc.items.SetStatus(ctx, id, stock.Classify(next)); err != nil {
		// La cantidad ya quedó aplicada; el estado se reconciliará en la
		// siguiente mutación. Solo log.
		uc.log.Error().Err(err).Str("item_id", id).Msg("persistir estado derivado falló")
	}

	uc.engine.OnQuantityChange(ctx, item, prev, next)
	uc.writeAudit(ctx, actor, "item.restock", id,
		fmt.Sprintf("reposición de %d (%d → %d)", amount, prev, next))

	item.Quantity = next
	item.Status = stock.Classify(next)
	return item, nil
}

// SetQuantity fija la cantidad de forma absoluta con check optimista de versión.
func (uc *UseCase) SetQuantity(ctx context.Context, actor dto.Actor, id string, quantity int, version int64) (*entity.Item, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.GetItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if item.Archived {
		return nil, domain.ErrArchived
	}

	prev := item.Quantity
	if err := uc.items.SetQuantity(ctx, id, quantity, version); err != nil {
		return nil, err
	}
	if err := uc.items.SetStatus(ctx, id, stock.Classify(quantity)); err != nil {
		uc.log.Error().Err(err).Str("item_id", id).Msg("persistir estado derivado falló")
	}

	uc.engine.OnQuantityChange(ctx, item, prev, quantity)
	uc.writeAudit(ctx, actor, "item.set_quantity", id,
		fmt.Sprintf("ajuste manual %d → %d", prev, quantity))

	item.Quantity = quantity
	item.Status = stock.Classify(quantity)
	item.Version = version + 1
	return item, nil
}

// Archive archiva (borrado lógico) o desarchiva un insumo.
func (uc *UseCase) Archive(ctx context.Context, actor dto.Actor, id string, archived bool) error {
	item, err := uc.GetItem(ctx, actor, id)
	if err != nil {
		return err
	}
	if item.Archived == archived {
		return nil
	}
	if err := uc.items.SetArchived(ctx, id, archived); err != nil {
		return err
	}
	action := "item.archive"
	if !archived {
		action = "item.unarchive"
	}
	uc.writeAudit(ctx, actor, action, id, item.Name)
	return nil
}

// writeAudit registra la entrada de auditoría; un fallo se loguea y se sigue.
func (uc *UseCase) writeAudit(ctx context.Context, actor dto.Actor, action, entityID, detail string) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		Actor:      actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityKind: "item",
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		uc.log.Error().Err(err).Str("action", action).Msg("escritura de auditoría falló")
	}
}
