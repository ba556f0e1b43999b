package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"academy/internal/infra/storage/memory"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

// Hub keeps the websocket connections of signed-in users and pushes each new
// message to its sender and receiver.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[string]map[*client]struct{}),
	}
}

// Serve upgrades an authenticated request and blocks until the peer leaves.
func (h *Hub) Serve(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(p.ID, cl)
	h.logger.Debug("live client joined", "user_id", p.ID)
	go h.write(cl)
	h.read(cl)
	h.remove(p.ID, cl)
	h.logger.Debug("live client left", "user_id", p.ID)
}

// Broadcast queues payload for every connection of the sender and receiver.
// Slow connections drop the message rather than block the request.
func (h *Hub) Broadcast(_ context.Context, msg memory.Message, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := []string{msg.SenderID}
	if msg.ReceiverID != msg.SenderID {
		users = append(users, msg.ReceiverID)
	}
	for _, user := range users {
		for cl := range h.clients[user] {
			select {
			case cl.send <- payload:
			default:
				h.logger.Warn("live client too slow, message dropped", "user_id", user)
			}
		}
	}
	return nil
}

// Connections counts the open connections of user.
func (h *Hub) Connections(user string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[user])
}

func (h *Hub) add(user string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[user]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[user] = set
	}
	set[cl] = struct{}{}
}

func (h *Hub) remove(user string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[user]
	if _, ok := set[cl]; !ok {
		return
	}
	delete(set, cl)
	if len(set) == 0 {
		delete(h.clients, user)
	}
	close(cl.send)
}

// read discards client frames; it only keeps the deadline fresh and notices
// when the peer goes away.
func (h *Hub) read(cl *client) {
	defer cl.conn.Close()
	cl.conn.SetReadLimit(4096)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
