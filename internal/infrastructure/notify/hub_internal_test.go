package notify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHub_DetenidoNoBloqueaAltasNiBajas(t *testing.T) {
	h := NewHub(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	returned := make(chan bool, 1)
	go func() {
		joined := h.join(nil)
		h.leave(nil)
		returned <- joined
	}()

	select {
	case joined := <-returned:
		assert.False(t, joined)
	case <-time.After(time.Second):
		t.Fatal("alta o baja bloqueada con el hub detenido")
	}
	assert.Equal(t, 0, h.Clients())
}
