package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/suministros-api/internal/domain/stock"
)

// Los límites exactos son comportamiento visible al usuario: 10 sigue siendo
// "limitado" (no agotado) y 11 ya es "disponible". Se fijan aquí para que un
// off-by-one no pase desapercibido.
func TestClassify_Limites(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		want     stock.Status
	}{
		{"cero es agotado", 0, stock.StatusOutOfStock},
		{"negativo es agotado", -5, stock.StatusOutOfStock},
		{"uno es limitado", 1, stock.StatusLimited},
		{"diez es limitado (límite inclusivo)", 10, stock.StatusLimited},
		{"once es disponible", 11, stock.StatusAvailable},
		{"cantidad alta es disponible", 500, stock.StatusAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stock.Classify(tc.quantity))
		})
	}
}
