package bridge

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds request frames, which carry write_file payloads.
	maxMessageSize = 16 << 20

	sendChannelSize = 256
)

// loopbackHosts returns the Host values the bridge answers to when
// listening on addr.
func loopbackHosts(addr net.Addr) map[string]bool {
	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil
	}
	return map[string]bool{
		net.JoinHostPort("127.0.0.1", port): true,
		net.JoinHostPort("localhost", port): true,
		net.JoinHostPort("::1", port):       true,
	}
}

// hostGuard rejects requests whose Host is not the loopback listen address,
// so a page served from a rebound DNS name cannot reach the bridge.
func hostGuard(hosts map[string]bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hosts[strings.ToLower(r.Host)] {
				http.Error(w, "forbidden host", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loopbackOrigin accepts the embedded WebView, which sends no Origin or an
// origin on the bridge's own loopback address.
func loopbackOrigin(hosts map[string]bool) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return hosts[strings.ToLower(u.Host)]
	}
}

// handler runs one decoded request and returns the reply frame.
type handler func(ctx context.Context, req request) reply

// hub tracks connected WebViews.
type hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	logger   *zap.SugaredLogger
	handle   handler
	upgrader websocket.Upgrader

	// wg tracks the pumps, calls the request handlers they start.
	wg    sync.WaitGroup
	calls sync.WaitGroup
}

type client struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newHub(logger *zap.SugaredLogger) *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// allow restricts the hub to the given loopback hosts. It must be called
// before the first connection is served.
func (h *hub) allow(hosts map[string]bool) {
	h.upgrader.CheckOrigin = loopbackOrigin(hosts)
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debugw("WebView connected", "total_clients", n)
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Debugw("WebView disconnected", "total_clients", n)
	}
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast queues v for every client. Slow clients are disconnected.
func (h *hub) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Errorw("Failed to marshal frame", "error", err)
		return
	}
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if !c.trySend(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range slow {
		h.logger.Warn("WebView send buffer full, disconnecting")
		h.remove(c)
	}
}

// closeAll disconnects every client and waits for their pumps and for the
// requests still being handled.
func (h *hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
	h.wg.Wait()
	h.calls.Wait()
}

func (h *hub) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendChannelSize),
		done: make(chan struct{}),
	}
	h.add(c)

	h.wg.Add(2)
	go c.writePump()
	go c.readPump(ctx)
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *client) trySend(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
		c.hub.wg.Done()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debugw("WebSocket unexpected close", "error", err)
			}
			return
		}

		var req request
		if err := json.Unmarshal(data, &req); err != nil || req.Cmd == "" {
			c.reply(reply{ID: req.ID, Error: "malformed request"})
			continue
		}

		// Commands such as dialogs block; the pump keeps reading so their
		// replies can arrive.
		c.hub.calls.Add(1)
		go func() {
			defer c.hub.calls.Done()
			c.reply(c.hub.handle(ctx, req))
		}()
	}
}

func (c *client) reply(r reply) {
	data, err := json.Marshal(r)
	if err != nil {
		data, _ = json.Marshal(reply{ID: r.ID, Error: "failed to encode result: " + err.Error()})
	}
	if !c.trySend(data) {
		c.hub.logger.Warnw("Dropping reply, send buffer full", "id", string(r.ID))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.hub.wg.Done()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
