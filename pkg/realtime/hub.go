package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"entregas/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

type client struct {
	profileID int64
	conn      *websocket.Conn
	send      chan []byte
	once      sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks the websocket connections of each profile on this instance.
type Hub struct {
	mu       sync.RWMutex
	clients  map[int64]map[*client]struct{}
	upgrader websocket.Upgrader
	log      logger.ILogger
}

func NewHub(log logger.ILogger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: log,
	}
}

// Deliver writes the event to every connection of its profile. Slow
// connections with a full buffer are dropped.
func (h *Hub) Deliver(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode realtime event", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[ev.ProfileID] {
		select {
		case c.send <- payload:
		default:
			h.removeLocked(c)
		}
	}
}

// Connections reports how many sockets a profile holds on this instance.
func (h *Hub) Connections(profileID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[profileID])
}

// ServeWS upgrades the request and blocks until the socket closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, profileID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{profileID: profileID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(c)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.profileID] == nil {
		h.clients[c.profileID] = make(map[*client]struct{})
	}
	h.clients[c.profileID][c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	set := h.clients[c.profileID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.profileID)
	}
	c.close()
}

// readPump discards client frames; it only exists to observe close and pong.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warning("websocket closed unexpectedly", logger.Int64("profile_id", c.profileID), logger.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
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
