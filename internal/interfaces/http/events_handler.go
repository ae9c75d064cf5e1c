package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/suministros-api/internal/infrastructure/broadcast"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// keepaliveInterval intervalo del comentario SSE que mantiene viva la conexión
// a través de proxies intermedios.
const keepaliveInterval = 25 * time.Second

// EventsHandler stream SSE de eventos de lock/unlock para la UI en vivo.
type EventsHandler struct {
	registry *broadcast.Registry
	log      *logger.Logger
}

// NewEventsHandler construye el handler.
func NewEventsHandler(registry *broadcast.Registry, log *logger.Logger) *EventsHandler {
	return &EventsHandler{registry: registry, log: log}
}

// Stream godoc
// @Summary      Stream de eventos de edición (SSE)
// @Description  Emite eventos lock/unlock como server-sent events. Sin replay: el cliente solo ve eventos posteriores a su conexión.
// @Tags         events
// @Security     Bearer
// @Produce      text/event-stream
// @Router       /api/events/stream [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := h.registry.Subscribe()
	h.log.Debug().Int("subscribers", h.registry.Len()).Msg("suscriptor SSE conectado")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					h.log.Error().Err(err).Msg("serialización de evento SSE falló")
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
			}
			// Flush tras cada frame; un error aquí significa cliente desconectado.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
