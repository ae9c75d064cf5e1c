package worldclock

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

var _ ports.Clock = (*Clock)(nil)

// Clock fuente de hora respaldada por un servicio de hora de red, con fallback
// silencioso al reloj local. El sistema nunca falla porque la fuente externa
// esté inaccesible; un desvío de reloj local solo afecta la expiración de
// locks y los timestamps de alertas, ambos tolerantes.
type Clock struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New construye la fuente de hora. Con BaseURL vacía siempre usa el reloj local.
func New(cfg config.ClockConfig, log *logger.Logger) *Clock {
	return &Clock{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// respuesta mínima del servicio de hora (formato worldtimeapi).
type timeResponse struct {
	UTCDatetime time.Time `json:"utc_datetime"`
}

// Now consulta la hora de red; ante cualquier fallo devuelve la local.
func (c *Clock) Now() time.Time {
	if c.baseURL == "" {
		return time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return time.Now()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Msg("fuente de hora de red inaccesible; se usa reloj local")
		return time.Now()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Now()
	}
	var tr timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.UTCDatetime.IsZero() {
		return time.Now()
	}
	return tr.UTCDatetime
}
