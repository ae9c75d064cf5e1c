package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/lock"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/pkg/logger"
	"github.com/jhoicas/suministros-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeUserRepo cubre el puerto de usuarios y el puerto de locks del manager;
// como en el adaptador real, el estado de lock vive en el propio usuario.
type fakeUserRepo struct {
	byID map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: map[string]*entity.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ string, _ bool, _, _ int) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) SetArchived(_ context.Context, id string, archived bool) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Archived = archived
	return nil
}

func (f *fakeUserRepo) GetLock(_ context.Context, recordID string) (*lock.State, error) {
	u, ok := f.byID[recordID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &lock.State{LockedBy: u.LockedBy, LockExpiresAt: u.LockExpiresAt}, nil
}

func (f *fakeUserRepo) SetLock(_ context.Context, recordID, holder string, expiresAt time.Time) error {
	u, ok := f.byID[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	h, e := holder, expiresAt
	u.LockedBy, u.LockExpiresAt = &h, &e
	return nil
}

func (f *fakeUserRepo) ClearLock(_ context.Context, recordID string) error {
	u, ok := f.byID[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	u.LockedBy, u.LockExpiresAt = nil, nil
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

type fakeBroadcaster struct {
	events []lock.Event
}

func (b *fakeBroadcaster) Publish(ev lock.Event) { b.events = append(b.events, ev) }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

var (
	superadmin = dto.Actor{ID: "sa-1", Name: "Root", DepartmentID: "dept-1", Role: entity.RoleSuperAdmin}
	adminCarla = dto.Actor{ID: "admin-1", Name: "Carla Ruiz", DepartmentID: "dept-1", Role: entity.RoleAdmin}
)

func targetUser() *entity.User {
	return &entity.User{
		ID:           "u-1",
		DepartmentID: "dept-1",
		Email:        "luis@example.com",
		Name:         "Luis Mora",
		Role:         entity.RoleStaff,
		Status:       "active",
	}
}

func newTestUseCase(t *testing.T, users ...*entity.User) (*UserUseCase, *fakeUserRepo, *fakeBroadcaster) {
	t.Helper()
	repo := newFakeUserRepo(users...)
	bc := &fakeBroadcaster{}
	clk := fixedClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	log := logger.Nop()
	locks := lock.NewManager(repo, bc, clk, log, metrics.New("test"))
	return NewUserUseCase(repo, &fakeAuditRepo{}, locks, log), repo, bc
}

func lockedBy(u *entity.User, holder string, expiresAt time.Time) {
	h, e := holder, expiresAt
	u.LockedBy, u.LockExpiresAt = &h, &e
}

// ──────────────────────────────────────────────────────────────────────────────
// Update — la edición exige el lock
// ──────────────────────────────────────────────────────────────────────────────

// Editar sin haber adquirido el lock es conflicto: el flujo correcto es
// lock → edit → unlock.
func TestUpdate_SinLock_Conflict(t *testing.T) {
	uc, _, _ := newTestUseCase(t, targetUser())

	_, err := uc.Update(context.Background(), adminCarla, "u-1", dto.UpdateUserRequest{Name: "Luis M."})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Con el lock en poder de otro admin el error lleva su nombre para la UI.
func TestUpdate_LockDeOtro_ConflictoConTitular(t *testing.T) {
	user := targetUser()
	lockedBy(user, "Bob", time.Date(2026, 3, 1, 10, 4, 0, 0, time.UTC))
	uc, _, _ := newTestUseCase(t, user)

	_, err := uc.Update(context.Background(), adminCarla, "u-1", dto.UpdateUserRequest{Name: "Luis M."})
	conflict, ok := domain.AsLockConflict(err)
	require.True(t, ok, "debe ser un LockConflictError")
	assert.Equal(t, "Bob", conflict.Holder)
}

// Titular vigente: lock → edit funciona y el cambio persiste.
func TestUpdate_ConLockPropio(t *testing.T) {
	uc, repo, _ := newTestUseCase(t, targetUser())
	ctx := context.Background()

	_, err := uc.Locks().Acquire(ctx, "u-1", adminCarla.Name)
	require.NoError(t, err)

	updated, err := uc.Update(ctx, adminCarla, "u-1", dto.UpdateUserRequest{Name: "Luis M.", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Luis M.", updated.Name)
	assert.Equal(t, entity.RoleAdmin, updated.Role)
	assert.Equal(t, "Luis M.", repo.byID["u-1"].Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Archive — fuerza la liberación del lock
// ──────────────────────────────────────────────────────────────────────────────

// Archivar libera el lock sea quien sea el titular y emite el evento unlock:
// el registro sale del conjunto editable.
func TestArchive_FuerzaLiberacionDelLock(t *testing.T) {
	user := targetUser()
	lockedBy(user, "Bob", time.Date(2026, 3, 1, 10, 4, 0, 0, time.UTC))
	uc, repo, bc := newTestUseCase(t, user)

	require.NoError(t, uc.Archive(context.Background(), adminCarla, "u-1"))

	stored := repo.byID["u-1"]
	assert.True(t, stored.Archived)
	assert.Nil(t, stored.LockedBy, "el lock debe quedar limpio aunque el titular fuera otro")
	assert.Nil(t, stored.LockExpiresAt)

	require.NotEmpty(t, bc.events)
	last := bc.events[len(bc.events)-1]
	assert.Equal(t, lock.EventUnlock, last.Type)
	assert.Equal(t, "u-1", last.RecordID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_EmailDuplicado(t *testing.T) {
	existing := targetUser()
	uc, _, _ := newTestUseCase(t, existing)

	_, err := uc.Create(context.Background(), superadmin, dto.CreateUserRequest{
		Email:        "luis@example.com",
		Name:         "Otro Luis",
		DepartmentID: "dept-1",
		Role:         entity.RoleStaff,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_RolInvalido(t *testing.T) {
	uc, _, _ := newTestUseCase(t)

	_, err := uc.Create(context.Background(), superadmin, dto.CreateUserRequest{
		Email:        "ana@example.com",
		Name:         "Ana Torres",
		DepartmentID: "dept-1",
		Role:         "gerente",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
