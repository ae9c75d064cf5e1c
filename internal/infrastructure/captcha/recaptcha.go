package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jhoicas/suministros-api/internal/application/request"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

var _ request.CaptchaVerifier = (*Verifier)(nil)

// Verifier adaptador del puerto CaptchaVerifier sobre el endpoint siteverify
// de reCAPTCHA. Un error de red es error (el llamador degrada abierto); solo
// success=false del servicio es un rechazo.
type Verifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
	log        *logger.Logger
}

// New construye el verificador. Con secret vacío la verificación queda
// deshabilitada y todo token pasa.
func New(cfg config.CaptchaConfig, log *logger.Logger) *Verifier {
	return &Verifier{
		secret:     cfg.Secret,
		verifyURL:  cfg.VerifyURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify valida el token contra el servicio.
func (v *Verifier) Verify(ctx context.Context, token string) (bool, error) {
	if v.secret == "" {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha: HTTP %d", resp.StatusCode)
	}
	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return false, fmt.Errorf("captcha: respuesta inválida: %w", err)
	}
	if !vr.Success {
		v.log.Debug().Strs("error_codes", vr.ErrorCodes).Msg("captcha rechazado")
	}
	return vr.Success, nil
}
