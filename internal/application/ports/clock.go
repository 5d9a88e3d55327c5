package ports

import "time"

// Clock fuente de tiempo (expiración de tickets, garantías).
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real en UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock reloj manipulable para pruebas y reproducciones.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

// Advance mueve el reloj d hacia adelante.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }
