package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	appstock "github.com/jhoicas/suministros-api/internal/application/stock"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/domain/stock"
	"github.com/jhoicas/suministros-api/pkg/logger"
	"github.com/jhoicas/suministros-api/pkg/metrics"
)

// CaptchaVerifier puerto hacia el servicio de verificación reCAPTCHA.
// Un error (servicio caído, timeout) no es un rechazo: el llamador degrada
// abierto y lo registra; solo un "no" explícito rechaza la solicitud.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// UseCase ciclo de vida de solicitudes de suministro: creación por personal,
// decisión por admins y entrega. La aprobación descuenta stock con guarda de
// no-negatividad y dispara el motor de transiciones.
type UseCase struct {
	requests repository.RequestRepository
	items    repository.ItemRepository
	audit    repository.AuditRepository
	engine   *appstock.TransitionEngine
	captcha  CaptchaVerifier
	log      *logger.Logger
	met      *metrics.Metrics
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	requests repository.RequestRepository,
	items repository.ItemRepository,
	audit repository.AuditRepository,
	engine *appstock.TransitionEngine,
	captcha CaptchaVerifier,
	log *logger.Logger,
	met *metrics.Metrics,
) *UseCase {
	return &UseCase{
		requests: requests,
		items:    items,
		audit:    audit,
		engine:   engine,
		captcha:  captcha,
		log:      log,
		met:      met,
	}
}

// Create registra una solicitud pendiente tras pasar el captcha.
func (uc *UseCase) Create(ctx context.Context, actor dto.Actor, in dto.CreateSupplyRequest) (*entity.SupplyRequest, error) {
	if in.ItemID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	ok, err := uc.captcha.Verify(ctx, in.CaptchaToken)
	if err != nil {
		// Verificador inaccesible: degradar abierto, la solicitud no se
		// bloquea por una dependencia secundaria.
		uc.log.Warn().Err(err).Msg("verificación captcha inaccesible; se omite")
	} else if !ok {
		return nil, domain.ErrCaptchaRejected
	}

	item, err := uc.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessDepartment(item.DepartmentID) {
		return nil, domain.ErrForbidden
	}
	if item.Archived {
		return nil, domain.ErrArchived
	}

	now := time.Now()
	req := &entity.SupplyRequest{
		ID:            uuid.New().String(),
		DepartmentID:  item.DepartmentID,
		ItemID:        item.ID,
		RequesterID:   actor.ID,
		RequesterName: actor.Name,
		Quantity:      in.Quantity,
		Status:        entity.RequestPending,
		Note:          in.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	uc.writeAudit(ctx, actor, "request.create", req.ID,
		fmt.Sprintf("solicitud de %d x %q", req.Quantity, item.Name))
	return req, nil
}

// List lista solicitudes visibles para el actor. El personal solo ve las
// propias; los admins, las de su departamento.
func (uc *UseCase) List(ctx context.Context, actor dto.Actor, filter entity.RequestFilter) ([]*entity.SupplyRequest, error) {
	switch actor.Role {
	case entity.RoleSuperAdmin:
		// sin restricción
	case entity.RoleAdmin:
		filter.DepartmentID = actor.DepartmentID
	default:
		filter.DepartmentID = actor.DepartmentID
		filter.RequesterID = actor.ID
	}
	return uc.requests.List(ctx, filter)
}

// Approve aprueba una solicitud pendiente descontando stock.
// La transición de estado es check-and-set (solo una decisión gana); el
// descuento lleva guarda de no-negatividad y si el stock no alcanza la
// solicitud vuelve a pendiente.
func (uc *UseCase) Approve(ctx context.Context, actor dto.Actor, requestID string) error {
	req, item, err := uc.loadForDecision(ctx, actor, requestID)
	if err != nil {
		return err
	}

	if err := uc.requests.UpdateStatus(ctx, requestID, entity.RequestPending, entity.RequestApproved, actor.Name, ""); err != nil {
		return err
	}

	prev, next, err := uc.items.IncrementQuantity(ctx, item.ID, -req.Quantity, req.Quantity)
	if err != nil {
		// Stock insuficiente (u otro fallo): revertir la decisión para que
		// otro admin pueda reintentar cuando haya stock.
		if reverrr := uc.requests.UpdateStatus(ctx, requestID, entity.RequestApproved, entity.RequestPending, "", ""); reverrr != nil {
			uc.log.Error().Err(reverrr).Str("request_id", requestID).
				Msg("revertir aprobación tras fallo de descuento falló")
		}
		return err
	}
	if err := uc.items.SetStatus(ctx, item.ID, stock.Classify(next)); err != nil {
		uc.log.Error().Err(err).Str("item_id", item.ID).Msg("persistir estado derivado falló")
	}

	uc.engine.OnQuantityChange(ctx, item, prev, next)
	uc.met.RequestsDecided.WithLabelValues("approved").Inc()
	uc.writeAudit(ctx, actor, "request.approve", requestID,
		fmt.Sprintf("aprobada: %d x %q (%d → %d)", req.Quantity, item.Name, prev, next))
	return nil
}

// Reject rechaza una solicitud pendiente sin tocar inventario.
func (uc *UseCase) Reject(ctx context.Context, actor dto.Actor, requestID, note string) error {
	req, item, err := uc.loadForDecision(ctx, actor, requestID)
	if err != nil {
		return err
	}
	if err := uc.requests.UpdateStatus(ctx, requestID, entity.RequestPending, entity.RequestRejected, actor.Name, note); err != nil {
		return err
	}
	uc.met.RequestsDecided.WithLabelValues("rejected").Inc()
	uc.writeAudit(ctx, actor, "request.reject", requestID,
		fmt.Sprintf("rechazada: %d x %q", req.Quantity, item.Name))
	return nil
}

// Deliver marca como entregada una solicitud ya aprobada.
func (uc *UseCase) Deliver(ctx context.Context, actor dto.Actor, requestID string) error {
	req, err := uc.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if !actor.CanAccessDepartment(req.DepartmentID) {
		return domain.ErrForbidden
	}
	if err := uc.requests.UpdateStatus(ctx, requestID, entity.RequestApproved, entity.RequestDelivered, actor.Name, ""); err != nil {
		return err
	}
	uc.writeAudit(ctx, actor, "request.deliver", requestID, "entregada")
	return nil
}

// loadForDecision carga la solicitud pendiente y su item, con control de acceso.
func (uc *UseCase) loadForDecision(ctx context.Context, actor dto.Actor, requestID string) (*entity.SupplyRequest, *entity.Item, error) {
	req, err := uc.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanAccessDepartment(req.DepartmentID) {
		return nil, nil, domain.ErrForbidden
	}
	if req.Status != entity.RequestPending {
		return nil, nil, domain.ErrConflict
	}
	item, err := uc.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, nil, err
	}
	return req, item, nil
}

func (uc *UseCase) writeAudit(ctx context.Context, actor dto.Actor, action, entityID, detail string) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		Actor:      actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityKind: "request",
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		uc.log.Error().Err(err).Str("action", action).Msg("escritura de auditoría falló")
	}
}
