package ports

import "time"

// Clock fuente de hora inyectable. La implementación de producción consulta una
// fuente de hora de red con fallback al reloj local; los tests usan una fija.
type Clock interface {
	Now() time.Time
}

// SystemClock implementación trivial sobre el reloj local.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
