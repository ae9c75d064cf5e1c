package dto

import "time"

// CreateSupplyRequest creación de una solicitud de insumos.
// CaptchaToken viene del widget reCAPTCHA del formulario.
type CreateSupplyRequest struct {
	ItemID       string `json:"item_id"`
	Quantity     int    `json:"quantity"`
	Note         string `json:"note"`
	CaptchaToken string `json:"captcha_token"`
}

// DecideRequest cuerpo de aprobación/rechazo.
type DecideRequest struct {
	Note string `json:"note"`
}

// SupplyRequestResponse representación de una solicitud en respuestas.
type SupplyRequestResponse struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"item_id"`
	RequesterID   string    `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	Quantity      int       `json:"quantity"`
	Status        string    `json:"status"`
	Note          string    `json:"note,omitempty"`
	DecidedBy     string    `json:"decided_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
