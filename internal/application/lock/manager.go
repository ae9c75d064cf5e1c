package lock

import (
	"context"
	"time"

	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/pkg/logger"
	"github.com/jhoicas/suministros-api/pkg/metrics"
)

// TTL duración fija del lock de edición desde su adquisición o refresco.
// No hay renovación automática; refrescar es volver a adquirir.
const TTL = 5 * time.Minute

// Tipos de evento emitidos al colaborador de broadcast.
const (
	EventLock   = "lock"
	EventUnlock = "unlock"
)

// Event evento de lock/unlock para los suscriptores de UI. Fire-and-forget.
type Event struct {
	Type      string     `json:"type"` // "lock" | "unlock"
	RecordID  string     `json:"recordId"`
	Holder    string     `json:"holder,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// State estado de lock leído del registro.
type State struct {
	LockedBy      *string
	LockExpiresAt *time.Time
}

// Repository puerto mínimo de persistencia que necesita el manager.
// Lo implementa el repositorio del registro bloqueable (hoy, usuarios).
type Repository interface {
	GetLock(ctx context.Context, recordID string) (*State, error)
	SetLock(ctx context.Context, recordID, holder string, expiresAt time.Time) error
	ClearLock(ctx context.Context, recordID string) error
}

// Broadcaster puerto hacia el push de UI en vivo. Sin acks.
type Broadcaster interface {
	Publish(event Event)
}

// Manager exclusión mutua optimista con expiración para la edición de un
// registro compartido. Un lock vencido se trata como ausente y se limpia de
// forma perezosa en el siguiente acceso; no hay barrido en segundo plano.
type Manager struct {
	repo      Repository
	broadcast Broadcaster
	clock     ports.Clock
	log       *logger.Logger
	met       *metrics.Metrics
}

// NewManager construye el manager.
func NewManager(repo Repository, broadcast Broadcaster, clock ports.Clock, log *logger.Logger, met *metrics.Metrics) *Manager {
	return &Manager{repo: repo, broadcast: broadcast, clock: clock, log: log, met: met}
}

// Acquire adquiere (o refresca, si holder ya lo tiene) el lock del registro.
// Si otro titular lo tiene vigente devuelve *domain.LockConflictError con su
// nombre. Devuelve el estado resultante del lock.
func (m *Manager) Acquire(ctx context.Context, recordID, holder string) (*State, error) {
	if holder == "" {
		return nil, domain.ErrInvalidInput
	}
	state, err := m.repo.GetLock(ctx, recordID)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()

	// Expiración perezosa: un lock vencido se limpia aquí y se trata como ausente.
	if state.LockedBy != nil && (state.LockExpiresAt == nil || state.LockExpiresAt.Before(now)) {
		if err := m.repo.ClearLock(ctx, recordID); err != nil {
			return nil, err
		}
		state.LockedBy = nil
		state.LockExpiresAt = nil
	}

	if state.LockedBy != nil && *state.LockedBy != holder {
		m.met.LockConflicts.Inc()
		return nil, &domain.LockConflictError{Holder: *state.LockedBy}
	}

	expiresAt := now.Add(TTL)
	if err := m.repo.SetLock(ctx, recordID, holder, expiresAt); err != nil {
		return nil, err
	}
	m.met.LocksAcquired.Inc()

	m.broadcast.Publish(Event{
		Type:      EventLock,
		RecordID:  recordID,
		Holder:    holder,
		ExpiresAt: &expiresAt,
	})
	m.log.Debug().
		Str("record_id", recordID).
		Str("holder", holder).
		Time("expires_at", expiresAt).
		Msg("lock de edición adquirido")

	return &State{LockedBy: &holder, LockExpiresAt: &expiresAt}, nil
}

// Release libera el lock si holder es su titular vigente; si no hay lock, el
// titular difiere o el lock ya venció devuelve domain.ErrForbidden. Un lock
// vencido se trata como ausente también aquí: otro admin puede haberlo
// adquirido entre medias y una liberación tardía no debe pisarlo.
func (m *Manager) Release(ctx context.Context, recordID, holder string) error {
	state, err := m.repo.GetLock(ctx, recordID)
	if err != nil {
		return err
	}
	if state.LockedBy == nil || *state.LockedBy != holder {
		return domain.ErrForbidden
	}
	if state.LockExpiresAt == nil || state.LockExpiresAt.Before(m.clock.Now()) {
		return domain.ErrForbidden
	}
	if err := m.repo.ClearLock(ctx, recordID); err != nil {
		return err
	}
	m.broadcast.Publish(Event{Type: EventUnlock, RecordID: recordID})
	m.log.Debug().
		Str("record_id", recordID).
		Str("holder", holder).
		Msg("lock de edición liberado")
	return nil
}

// ForceRelease limpia el lock sin verificar titular y emite unlock. Se usa al
// archivar el registro: sale del conjunto editable, así que cualquier lock
// vigente deja de tener sentido.
func (m *Manager) ForceRelease(ctx context.Context, recordID string) error {
	if err := m.repo.ClearLock(ctx, recordID); err != nil {
		return err
	}
	m.broadcast.Publish(Event{Type: EventUnlock, RecordID: recordID})
	return nil
}

// HeldBy devuelve el titular vigente del lock, o "" si no hay lock activo.
// Solo lectura; no limpia locks vencidos.
func (m *Manager) HeldBy(ctx context.Context, recordID string) (string, error) {
	state, err := m.repo.GetLock(ctx, recordID)
	if err != nil {
		return "", err
	}
	if state.LockedBy == nil || state.LockExpiresAt == nil || state.LockExpiresAt.Before(m.clock.Now()) {
		return "", nil
	}
	return *state.LockedBy, nil
}
