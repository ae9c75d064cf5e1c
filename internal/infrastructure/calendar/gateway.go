package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	appstock "github.com/jhoicas/suministros-api/internal/application/stock"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// Verificar en tiempo de compilación que Gateway implementa el puerto.
var _ appstock.NotificationGateway = (*Gateway)(nil)

// Gateway adaptador del puerto NotificationGateway sobre la API REST de un
// servicio de calendario. Las alertas de stock viven como eventos con tags
// privados (extendedProperties.private) que actúan de clave de deduplicación.
//
// Usa net/http de la librería estándar; no requiere SDK. Todas las llamadas
// pasan por un circuit breaker: con el calendario caído se corta rápido en
// lugar de sumar timeouts a cada mutación de inventario.
type Gateway struct {
	baseURL    string
	calendarID string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        *logger.Logger
}

// NewGateway construye el adaptador.
func NewGateway(cfg config.CalendarConfig, log *logger.Logger) *Gateway {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "calendar",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker del calendario cambió de estado")
		},
	})
	return &Gateway{
		baseURL:    cfg.BaseURL,
		calendarID: cfg.CalendarID,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		log:        log,
	}
}

// ── Estructuras del protocolo de eventos ──────────────────────────────────────

type eventTime struct {
	DateTime time.Time `json:"dateTime"`
}

type eventProperties struct {
	Private map[string]string `json:"private,omitempty"`
}

type calendarEvent struct {
	ID                 string           `json:"id,omitempty"`
	Summary            string           `json:"summary"`
	Description        string           `json:"description,omitempty"`
	Start              eventTime        `json:"start"`
	End                eventTime        `json:"end"`
	ExtendedProperties *eventProperties `json:"extendedProperties,omitempty"`
}

type eventList struct {
	Items []calendarEvent `json:"items"`
}

func toEntry(ev calendarEvent) appstock.Entry {
	entry := appstock.Entry{
		ID:          ev.ID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       ev.Start.DateTime,
		End:         ev.End.DateTime,
	}
	if ev.ExtendedProperties != nil {
		entry.Private = ev.ExtendedProperties.Private
	}
	return entry
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// List devuelve los eventos vivos cuyos tags privados coincidan con privateTags.
func (g *Gateway) List(ctx context.Context, privateTags map[string]string) ([]appstock.Entry, error) {
	q := url.Values{}
	for k, v := range privateTags {
		q.Add("privateExtendedProperty", fmt.Sprintf("%s=%s", k, v))
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s",
		g.baseURL, url.PathEscape(g.calendarID), q.Encode())

	body, err := g.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var list eventList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("calendar: respuesta inválida: %w", err)
	}
	entries := make([]appstock.Entry, 0, len(list.Items))
	for _, ev := range list.Items {
		entries = append(entries, toEntry(ev))
	}
	return entries, nil
}

// Create registra el evento y devuelve la entrada con el ID asignado.
func (g *Gateway) Create(ctx context.Context, entry appstock.Entry) (appstock.Entry, error) {
	payload := calendarEvent{
		Summary:     entry.Summary,
		Description: entry.Description,
		Start:       eventTime{DateTime: entry.Start},
		End:         eventTime{DateTime: entry.End},
		ExtendedProperties: &eventProperties{
			Private: entry.Private,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return appstock.Entry{}, err
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events", g.baseURL, url.PathEscape(g.calendarID))
	body, err := g.do(ctx, http.MethodPost, endpoint, raw)
	if err != nil {
		return appstock.Entry{}, err
	}
	var created calendarEvent
	if err := json.Unmarshal(body, &created); err != nil {
		return appstock.Entry{}, fmt.Errorf("calendar: respuesta inválida: %w", err)
	}
	return toEntry(created), nil
}

// Delete elimina el evento.
func (g *Gateway) Delete(ctx context.Context, entryID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		g.baseURL, url.PathEscape(g.calendarID), url.PathEscape(entryID))
	_, err := g.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// do ejecuta la petición a través del circuit breaker.
func (g *Gateway) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if g.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.apiKey)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("calendar: HTTP %d: %s", resp.StatusCode, truncate(body, 200))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Noop gateway deshabilitado (sin CALENDAR_BASE_URL configurada). Lista vacío y
// descarta creaciones/borrados con un log de debug; así los entornos locales no
// requieren un calendario.
type Noop struct {
	log *logger.Logger
}

// NewNoop construye el gateway deshabilitado.
func NewNoop(log *logger.Logger) *Noop { return &Noop{log: log} }

var _ appstock.NotificationGateway = (*Noop)(nil)

func (n *Noop) List(context.Context, map[string]string) ([]appstock.Entry, error) {
	return nil, nil
}

func (n *Noop) Create(_ context.Context, entry appstock.Entry) (appstock.Entry, error) {
	n.log.Debug().Str("summary", entry.Summary).Msg("gateway de calendario deshabilitado; alerta descartada")
	return entry, nil
}

func (n *Noop) Delete(context.Context, string) error { return nil }
