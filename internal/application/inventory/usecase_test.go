package inventory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	appstock "github.com/jhoicas/suministros-api/internal/application/stock"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/stock"
	"github.com/jhoicas/suministros-api/pkg/logger"
	"github.com/jhoicas/suministros-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeItemRepo struct {
	item      *entity.Item
	setStatus []stock.Status
	// args del último IncrementQuantity, para verificar la guarda
	lastDelta, lastGuard int
}

func (f *fakeItemRepo) Create(_ context.Context, item *entity.Item) error {
	f.item = item
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	if f.item == nil || f.item.ID != id {
		return nil, domain.ErrNotFound
	}
	cp := *f.item
	return &cp, nil
}

func (f *fakeItemRepo) List(_ context.Context, _ entity.ItemFilter) ([]*entity.Item, error) {
	if f.item == nil {
		return nil, nil
	}
	return []*entity.Item{f.item}, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *entity.Item) error {
	f.item = item
	return nil
}

func (f *fakeItemRepo) IncrementQuantity(_ context.Context, id string, delta, guardMin int) (int, int, error) {
	if f.item == nil || f.item.ID != id {
		return 0, 0, domain.ErrNotFound
	}
	f.lastDelta, f.lastGuard = delta, guardMin
	if guardMin >= 0 && f.item.Quantity < guardMin {
		return 0, 0, domain.ErrInsufficientStock
	}
	prev := f.item.Quantity
	f.item.Quantity += delta
	return prev, f.item.Quantity, nil
}

func (f *fakeItemRepo) SetQuantity(_ context.Context, _ string, quantity int, expectedVersion int64) error {
	if f.item.Version != expectedVersion {
		return domain.ErrConflict
	}
	f.item.Quantity = quantity
	f.item.Version++
	return nil
}

func (f *fakeItemRepo) SetStatus(_ context.Context, _ string, status stock.Status) error {
	f.item.Status = status
	f.setStatus = append(f.setStatus, status)
	return nil
}

func (f *fakeItemRepo) SetArchived(_ context.Context, _ string, archived bool) error {
	f.item.Archived = archived
	return nil
}

type fakeAuditRepo struct {
	entries []*entity.AuditEntry
}

func (f *fakeAuditRepo) Append(_ context.Context, entry *entity.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ entity.AuditFilter) ([]*entity.AuditEntry, error) {
	return f.entries, nil
}

// recordingGateway graba el tráfico que el motor de transiciones genera, para
// observar desde aquí qué alerta salió (o no salió) tras cada mutación.
type recordingGateway struct {
	created []appstock.Entry
	deleted []string
}

func (g *recordingGateway) List(_ context.Context, _ map[string]string) ([]appstock.Entry, error) {
	return nil, nil
}

func (g *recordingGateway) Create(_ context.Context, e appstock.Entry) (appstock.Entry, error) {
	e.ID = "ev-1"
	g.created = append(g.created, e)
	return e, nil
}

func (g *recordingGateway) Delete(_ context.Context, id string) error {
	g.deleted = append(g.deleted, id)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

var admin = dto.Actor{ID: "admin-1", Name: "Carla Ruiz", DepartmentID: "dept-1", Role: entity.RoleAdmin}

func newTestUseCase(t *testing.T, quantity int) (*UseCase, *fakeItemRepo, *recordingGateway, *fakeAuditRepo) {
	t.Helper()
	items := &fakeItemRepo{item: &entity.Item{
		ID:           "item-1",
		DepartmentID: "dept-1",
		Name:         "Tóner negro",
		Category:     "impresión",
		Unit:         "unidad",
		Quantity:     quantity,
		Status:       stock.Classify(quantity),
		Version:      1,
	}}
	audit := &fakeAuditRepo{}
	gw := &recordingGateway{}
	log := logger.Nop()
	met := metrics.New("test")
	engine := appstock.NewTransitionEngine(
		appstock.NewDedupStore(gw, log, met),
		fixedClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		log, met,
	)
	return NewUseCase(items, audit, engine, log), items, gw, audit
}

// ──────────────────────────────────────────────────────────────────────────────
// Restock
// ──────────────────────────────────────────────────────────────────────────────

// Reposición que cruza de agotado a disponible: incremento sin guarda, estado
// derivado persistido y alerta de reposición emitida al gateway.
func TestRestock_CruzaAAvailable(t *testing.T) {
	uc, items, gw, audit := newTestUseCase(t, 0)

	item, err := uc.Restock(context.Background(), admin, "item-1", 40)
	require.NoError(t, err)

	assert.Equal(t, 40, item.Quantity)
	assert.Equal(t, stock.StatusAvailable, item.Status)
	assert.Equal(t, 40, items.lastDelta)
	assert.Equal(t, -1, items.lastGuard, "la reposición no lleva guarda de mínimo")
	require.NotEmpty(t, items.setStatus, "el estado derivado debe persistirse")
	assert.Equal(t, stock.StatusAvailable, items.setStatus[len(items.setStatus)-1])

	require.Len(t, gw.created, 1, "cruzar a disponible debe emitir la alerta de reposición")
	assert.True(t, strings.HasPrefix(gw.created[0].Summary, "RESTOCKED:"))
	assert.Equal(t, "item-1", gw.created[0].Private["itemId"])
	assert.NotEmpty(t, audit.entries)
}

// Movimiento dentro del mismo estado: ni alerta ni retiros, solo el incremento.
func TestRestock_MismoEstado_SinAlertas(t *testing.T) {
	uc, _, gw, _ := newTestUseCase(t, 50)

	_, err := uc.Restock(context.Background(), admin, "item-1", 10)
	require.NoError(t, err)

	assert.Empty(t, gw.created, "sin cambio de estado no debe salir tráfico al gateway")
	assert.Empty(t, gw.deleted)
}

func TestRestock_MontoInvalido(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t, 5)

	_, err := uc.Restock(context.Background(), admin, "item-1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Restock(context.Background(), admin, "item-1", -3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRestock_ItemArchivado(t *testing.T) {
	uc, items, _, _ := newTestUseCase(t, 5)
	items.item.Archived = true

	_, err := uc.Restock(context.Background(), admin, "item-1", 10)
	assert.ErrorIs(t, err, domain.ErrArchived)
}

// ──────────────────────────────────────────────────────────────────────────────
// SetQuantity
// ──────────────────────────────────────────────────────────────────────────────

// Set absoluto que cae a agotado: check de versión, estado persistido y alerta
// de agotamiento emitida.
func TestSetQuantity_CaeAAgotado(t *testing.T) {
	uc, items, gw, _ := newTestUseCase(t, 30)

	item, err := uc.SetQuantity(context.Background(), admin, "item-1", 0, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, item.Quantity)
	assert.Equal(t, stock.StatusOutOfStock, item.Status)
	assert.Equal(t, int64(2), item.Version, "el set absoluto avanza la versión")
	require.NotEmpty(t, items.setStatus)
	assert.Equal(t, stock.StatusOutOfStock, items.setStatus[len(items.setStatus)-1])

	require.Len(t, gw.created, 1)
	assert.True(t, strings.HasPrefix(gw.created[0].Summary, "OUT OF STOCK:"))
}

// Versión obsoleta: conflicto, sin estado persistido y sin alertas.
func TestSetQuantity_VersionObsoleta_Conflict(t *testing.T) {
	uc, items, gw, _ := newTestUseCase(t, 30)

	_, err := uc.SetQuantity(context.Background(), admin, "item-1", 0, 99)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 30, items.item.Quantity, "un set rechazado no debe tocar la cantidad")
	assert.Empty(t, items.setStatus)
	assert.Empty(t, gw.created)
}

func TestSetQuantity_NegativaInvalida(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t, 30)

	_, err := uc.SetQuantity(context.Background(), admin, "item-1", -1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Archive / acceso
// ──────────────────────────────────────────────────────────────────────────────

func TestArchive_IdaYVuelta(t *testing.T) {
	uc, items, _, audit := newTestUseCase(t, 30)

	require.NoError(t, uc.Archive(context.Background(), admin, "item-1", true))
	assert.True(t, items.item.Archived)

	// Archivar dos veces es no-op y no duplica auditoría.
	entries := len(audit.entries)
	require.NoError(t, uc.Archive(context.Background(), admin, "item-1", true))
	assert.Len(t, audit.entries, entries)

	require.NoError(t, uc.Archive(context.Background(), admin, "item-1", false))
	assert.False(t, items.item.Archived)
}

func TestGetItem_OtroDepartamento_Forbidden(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t, 30)
	otro := dto.Actor{ID: "admin-2", Name: "Eva Sanz", DepartmentID: "dept-2", Role: entity.RoleAdmin}

	_, err := uc.GetItem(context.Background(), otro, "item-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
