package calendar_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/jhoicas/suministros-api/internal/application/stock"
	"github.com/jhoicas/suministros-api/internal/infrastructure/calendar"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// recordedRequest captura lo que el gateway envió al servidor. El cuerpo queda
// para el handler de cada test, que lo decodifica si le interesa.
type recordedRequest struct {
	method string
	path   string
	query  map[string][]string
	auth   string
}

func newGateway(t *testing.T, handler http.HandlerFunc) (*calendar.Gateway, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.Query()
		rec.auth = r.Header.Get("Authorization")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	g := calendar.NewGateway(config.CalendarConfig{
		BaseURL:    srv.URL,
		CalendarID: "alertas",
		APIKey:     "clave-de-prueba",
		Timeout:    2 * time.Second,
	}, logger.Nop())
	return g, rec
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

// List debe codificar cada tag privado como privateExtendedProperty=clave=valor
// y decodificar los tags de vuelta desde extendedProperties.private.
func TestGateway_List_CodificaTagsPrivados(t *testing.T) {
	g, rec := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id":      "ev-1",
					"summary": "LOW STOCK: Resma carta",
					"start":   map[string]string{"dateTime": "2026-03-01T10:00:00Z"},
					"end":     map[string]string{"dateTime": "2026-03-01T11:00:00Z"},
					"extendedProperties": map[string]interface{}{
						"private": map[string]string{
							"itemId":  "item-1",
							"alertId": "item-1:low_stock",
						},
					},
				},
			},
		})
	})

	entries, err := g.List(context.Background(), map[string]string{
		"itemId": "item-1",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/calendars/alertas/events", rec.path)
	assert.Equal(t, []string{"itemId=item-1"}, rec.query["privateExtendedProperty"],
		"los tags deben viajar como privateExtendedProperty=clave=valor")
	assert.Equal(t, "Bearer clave-de-prueba", rec.auth)

	require.Len(t, entries, 1)
	assert.Equal(t, "ev-1", entries[0].ID)
	assert.Equal(t, "LOW STOCK: Resma carta", entries[0].Summary)
	assert.Equal(t, "item-1:low_stock", entries[0].Private["alertId"],
		"los tags privados deben decodificarse desde extendedProperties.private")
}

func TestGateway_List_SinResultados(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]interface{}{"items": []interface{}{}})
	})

	entries, err := g.List(context.Background(), map[string]string{"itemId": "item-9"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

// Create debe serializar la entrada completa (summary, description, ventana y
// tags privados) y devolver la entrada con el ID que asignó el servidor.
func TestGateway_Create_IdaYVuelta(t *testing.T) {
	g, rec := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var ev map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		ev["id"] = "ev-creado"
		writeJSON(w, ev)
	})

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	created, err := g.Create(context.Background(), appstock.Entry{
		Summary:     "OUT OF STOCK: Tóner negro",
		Description: "Insumo: Tóner negro",
		Private: map[string]string{
			"itemId":  "item-2",
			"alertId": "item-2:out_of_stock",
		},
		Start: start,
		End:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/calendars/alertas/events", rec.path)
	assert.Equal(t, "ev-creado", created.ID, "debe devolver el ID asignado por el servidor")
	assert.Equal(t, "OUT OF STOCK: Tóner negro", created.Summary)
	assert.Equal(t, "item-2:out_of_stock", created.Private["alertId"],
		"los tags privados deben sobrevivir la ida y vuelta")
	assert.Equal(t, start, created.Start)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestGateway_Delete_RutaDelEvento(t *testing.T) {
	g, rec := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, g.Delete(context.Background(), "ev-7"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/calendars/alertas/events/ev-7", rec.path)
}

// ──────────────────────────────────────────────────────────────────────────────
// Degradación de errores
// ──────────────────────────────────────────────────────────────────────────────

// Una respuesta no-2xx es error para que el llamador degrade; el cuerpo viaja
// en el mensaje para el log.
func TestGateway_ErrorHTTP_SePropaga(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"backend caído"}`))
	})

	_, err := g.List(context.Background(), map[string]string{"itemId": "item-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestGateway_RespuestaInvalida_EsError(t *testing.T) {
	g, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("esto no es JSON"))
	})

	_, err := g.List(context.Background(), map[string]string{"itemId": "item-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "respuesta inválida")
}

// Tras cinco fallos consecutivos el circuit breaker abre y las llamadas
// siguientes fallan rápido sin tocar la red.
func TestGateway_CircuitBreaker_AbreTrasFallos(t *testing.T) {
	hits := 0
	g, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := g.List(ctx, map[string]string{"itemId": "item-1"})
		require.Error(t, err)
	}
	require.Equal(t, 5, hits)

	_, err := g.List(ctx, map[string]string{"itemId": "item-1"})
	require.Error(t, err)
	assert.Equal(t, 5, hits, "con el breaker abierto no debe salir tráfico")
}
