package broadcast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/application/lock"
	"github.com/jhoicas/suministros-api/internal/infrastructure/broadcast"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// Alta, entrega a todos los suscriptores y baja con cierre del canal.
func TestRegistry_SuscribirPublicarCancelar(t *testing.T) {
	r := broadcast.NewRegistry(logger.Nop())
	assert.Zero(t, r.Len())

	ch1, cancel1 := r.Subscribe()
	ch2, cancel2 := r.Subscribe()
	defer cancel2()
	assert.Equal(t, 2, r.Len())

	ev := lock.Event{Type: lock.EventLock, RecordID: "u-1", Holder: "Alice"}
	r.Publish(ev)

	got1 := <-ch1
	got2 := <-ch2
	assert.Equal(t, ev, got1)
	assert.Equal(t, ev, got2)

	cancel1()
	assert.Equal(t, 1, r.Len())

	// El canal dado de baja queda cerrado; el resto sigue recibiendo.
	_, open := <-ch1
	assert.False(t, open, "cancel debe cerrar el canal del suscriptor")

	r.Publish(lock.Event{Type: lock.EventUnlock, RecordID: "u-1"})
	next := <-ch2
	assert.Equal(t, lock.EventUnlock, next.Type)

	// Cancelar dos veces es inofensivo.
	cancel1()
	assert.Equal(t, 1, r.Len())
}

// Un suscriptor con el buffer lleno pierde eventos en lugar de bloquear al
// publicador.
func TestRegistry_BufferLleno_NoBloquea(t *testing.T) {
	r := broadcast.NewRegistry(logger.Nop())
	ch, cancel := r.Subscribe()
	defer cancel()

	// 16 de buffer más un excedente que debe descartarse sin bloquear.
	for i := 0; i < 20; i++ {
		r.Publish(lock.Event{Type: lock.EventLock, RecordID: "u-1"})
	}

	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
			continue
		default:
		}
		break
	}
	require.Equal(t, 16, delivered, "solo cabe el buffer; el resto se descarta")
}
