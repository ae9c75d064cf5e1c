package broadcast

import (
	"sync"

	"github.com/jhoicas/suministros-api/internal/application/lock"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

var _ lock.Broadcaster = (*Registry)(nil)

// Registry registro de suscriptores para el push de UI en vivo (SSE).
// Se construye una vez en main y se inyecta; no hay estado a nivel de paquete.
// Publish es fire-and-forget: un suscriptor con el buffer lleno pierde el
// evento en lugar de bloquear al publicador.
type Registry struct {
	mu     sync.Mutex
	subs   map[uint64]chan lock.Event
	nextID uint64
	log    *logger.Logger
}

// NewRegistry construye el registro.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		subs: make(map[uint64]chan lock.Event),
		log:  log,
	}
}

// Subscribe registra un suscriptor y devuelve su canal junto con la función de
// baja. El caller debe invocar cancel al cerrar la conexión.
func (r *Registry) Subscribe() (<-chan lock.Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	ch := make(chan lock.Event, 16)
	r.subs[id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish entrega el evento a todos los suscriptores sin bloquear.
func (r *Registry) Publish(ev lock.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, ch := range r.subs {
		select {
		case ch <- ev:
		default:
			r.log.Warn().
				Uint64("subscriber", id).
				Str("type", ev.Type).
				Msg("buffer de suscriptor lleno; evento descartado")
		}
	}
}

// Len devuelve el número de suscriptores activos.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
