package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/jhoicas/taller-api/internal/application/ports"
)

// ErrHubBusy el hub no alcanzó a tomar el mensaje.
var ErrHubBusy = errors.New("hub de websocket saturado")

// Hub difunde eventos a los clientes websocket conectados (/ws).
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	stopped    chan struct{} // se cierra cuando Run termina
	mutex      sync.Mutex
	log        zerolog.Logger
}

var _ ports.Notifier = (*Hub)(nil)

// NewHub crea el hub; buffer es la cola de mensajes pendientes de difundir.
func NewHub(buffer int, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, buffer),
		stopped:    make(chan struct{}),
		log:        log,
	}
}

// Run atiende altas, bajas y difusión hasta que ctx se cancele. Se llama una sola vez.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug().Int("clients", n).Msg("cliente websocket conectado")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Notify encola el evento serializado; nunca bloquea la operación que lo emite.
func (h *Hub) Notify(_ context.Context, event ports.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- payload:
		return nil
	default:
		return ErrHubBusy
	}
}

// Clients número de conexiones activas.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Handler atiende una conexión: la registra y la mantiene hasta que el cliente cierre.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		if !h.join(c) {
			_ = c.Close()
			return
		}
		defer h.leave(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// join registra la conexión; false si el hub ya se detuvo.
func (h *Hub) join(c *websocket.Conn) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// leave da de baja la conexión. Con el hub detenido no hay nada que hacer: Run ya la cerró.
func (h *Hub) leave(c *websocket.Conn) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}
