package dto

import "time"

// CreateItemRequest alta de un insumo.
type CreateItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Quantity int    `json:"quantity"`
}

// UpdateItemRequest edición de los campos descriptivos (no toca cantidad).
type UpdateItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

// RestockRequest reposición por delta positivo.
type RestockRequest struct {
	Amount int `json:"amount"`
}

// SetQuantityRequest set absoluto de cantidad con control optimista.
type SetQuantityRequest struct {
	Quantity int   `json:"quantity"`
	Version  int64 `json:"version"`
}

// ItemResponse representación de un insumo en respuestas.
type ItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	Archived  bool      `json:"archived"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
