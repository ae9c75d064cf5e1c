package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// LockExpired trata como vencido un lock ausente, uno sin expiración (estado
// inconsistente) y uno con expiración pasada; solo un lock con expiración
// futura cuenta como vigente.
func TestUser_LockExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	holder := "Carla Ruiz"
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name      string
		lockedBy  *string
		expiresAt *time.Time
		expired   bool
	}{
		{"sin lock", nil, nil, true},
		{"sin expiración", &holder, nil, true},
		{"expiración pasada", &holder, &past, true},
		{"vigente", &holder, &future, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := entity.User{LockedBy: tc.lockedBy, LockExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.expired, u.LockExpired(now))
		})
	}
}
