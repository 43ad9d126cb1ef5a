package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bankist/internal/bank"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

// LiveMessage is what the page receives over the socket.
type LiveMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

const liveAccountRefresh = "account:refresh"

// LiveHub pushes refresh notices to every socket whose session is
// looking at an account that changed outside a request.
type LiveHub struct {
	mu       sync.Mutex
	clients  map[*liveClient]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type liveClient struct {
	conn    *websocket.Conn
	session *webSession
	send    chan []byte
}

func NewLiveHub(logger *slog.Logger) *LiveHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHub{
		clients: make(map[*liveClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// NotifyAccount matches bank.Options.OnLoanCredited. It never blocks: a
// client whose buffer is full misses the notice and catches up on its
// next request.
func (h *LiveHub) NotifyAccount(accountID string, _ bank.View) {
	msg, err := json.Marshal(LiveMessage{Type: liveAccountRefresh, Timestamp: time.Now()})
	if err != nil {
		h.logger.Error("Failed to marshal live message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for c := range h.clients {
		if c.session.AccountID() != accountID {
			continue
		}
		select {
		case c.send <- msg:
			delivered++
		default:
			h.logger.Warn("Live client too slow, notice dropped", "session_id", c.session.ID)
		}
	}
	h.logger.Debug("Account refresh pushed", "account_id", accountID, "clients", delivered)
}

// Clients returns the number of open sockets.
func (h *LiveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve upgrades the request and pumps messages until the socket closes.
func (h *LiveHub) Serve(w http.ResponseWriter, r *http.Request, session *webSession) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to upgrade to WebSocket", "error", err)
		return
	}

	c := &liveClient{conn: conn, session: session, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("Live client connected", "session_id", session.ID, "clients", total)

	go h.writePump(c)
	h.readPump(c)
}

func (h *LiveHub) unregister(c *liveClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump discards client messages; it exists to notice disconnects and
// to handle pongs.
func (h *LiveHub) readPump(c *liveClient) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *LiveHub) writePump(c *liveClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseAll disconnects every client, used on shutdown.
func (h *LiveHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
