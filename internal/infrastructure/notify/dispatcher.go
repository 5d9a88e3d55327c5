// Package notify implementa los sumideros de notificaciones: websocket, Kafka y un
// despachador que reparte cada evento entre todos ellos.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/taller-api/internal/application/ports"
)

// Dispatcher entrega cada evento a todos los sumideros. Un sumidero caído no impide
// la entrega a los demás; los errores se devuelven juntos.
type Dispatcher struct {
	sinks []ports.Notifier
}

var _ ports.Notifier = (*Dispatcher)(nil)

// NewDispatcher ignora sumideros nil.
func NewDispatcher(sinks ...ports.Notifier) *Dispatcher {
	d := &Dispatcher{}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

// Notify reparte el evento.
func (d *Dispatcher) Notify(ctx context.Context, event ports.Event) error {
	var errs []error
	for i, s := range d.sinks {
		if err := s.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("sumidero %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
