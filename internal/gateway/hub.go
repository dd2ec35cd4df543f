// Package gateway serves room clients over WebSocket and a small HTTP API.
// It turns inbound events into room.Service calls and fans the committed
// results out to the room's connections.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/chess-rooms/internal/msgcat"
	"github.com/park285/chess-rooms/internal/obslog"
	"github.com/park285/chess-rooms/internal/room"
	"github.com/park285/chess-rooms/internal/roomfeed"
)

const (
	readLimit   = 4096
	feedTimeout = 2 * time.Second
)

// Options tune the socket side of the hub.
type Options struct {
	AllowedOrigins []string
	SendBuffer     int
	PingInterval   time.Duration
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub owns the live connections.
type Hub struct {
	svc      *room.Service
	feed     roomfeed.Feed
	msgs     *msgcat.Catalog
	log      *zap.Logger
	opts     Options
	validate *validator.Validate

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(svc *room.Service, feed roomfeed.Feed, msgs *msgcat.Catalog, log *zap.Logger, opts Options) *Hub {
	if feed == nil {
		feed = roomfeed.Nop{}
	}
	if log == nil {
		log = obslog.L()
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 25 * time.Second
	}
	return &Hub{
		svc:      svc,
		feed:     feed,
		msgs:     msgs,
		log:      log,
		opts:     opts,
		validate: validator.New(),
		clients:  make(map[string]*client),
	}
}

// Connections returns the number of open sockets.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and runs the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: h.opts.AllowedOrigins}
	if len(h.opts.AllowedOrigins) == 0 {
		opts.InsecureSkipVerify = true
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Warn("ws_accept_failed", zap.Error(err), zap.String("remote", r.RemoteAddr))
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, h.opts.SendBuffer)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Info("ws_accept", zap.String("conn_id", c.id), zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.writeLoop(ctx, c)

	h.readLoop(ctx, c)

	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	h.onDisconnect(c.id)
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	h.log.Info("ws_close", zap.String("conn_id", c.id))
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	ping := time.NewTicker(h.opts.PingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				h.log.Debug("ws_write_failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, h.opts.PingInterval)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				h.log.Debug("ws_ping_failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		}
	}
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		h.handle(c.id, data)
	}
}

// deliver queues msg for connID without blocking; a full buffer drops the frame.
func (h *Hub) deliver(connID string, msg []byte) {
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.log.Warn("ws_send_dropped", zap.String("conn_id", connID))
	}
}

func (h *Hub) sendTo(connID, typ string, payload any) {
	msg, err := frame(typ, payload)
	if err != nil {
		h.log.Error("frame_encode_failed", zap.String("type", typ), zap.Error(err))
		return
	}
	h.deliver(connID, msg)
}

// broadcast sends to every occupant of roomID known to this hub.
func (h *Hub) broadcast(roomID, typ string, payload any) {
	msg, err := frame(typ, payload)
	if err != nil {
		h.log.Error("frame_encode_failed", zap.String("type", typ), zap.Error(err))
		return
	}
	for _, id := range h.svc.Occupants(roomID) {
		h.deliver(id, msg)
	}
}

// publish mirrors a committed event to the feed. Feed failures never affect clients.
func (h *Hub) publish(roomID, typ string, payload any, at time.Time) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
	defer cancel()
	ev := roomfeed.Event{Type: typ, RoomID: roomID, At: at, Data: raw}
	if err := h.feed.Publish(ctx, ev); err != nil {
		h.log.Warn("feed_publish_failed", zap.String("room_id", roomID), zap.String("type", typ), zap.Error(err))
	}
}

func (h *Hub) markLive(roomID string) {
	ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
	defer cancel()
	if err := h.feed.MarkLive(ctx, roomID); err != nil {
		h.log.Warn("feed_mark_live_failed", zap.String("room_id", roomID), zap.Error(err))
	}
}

func (h *Hub) markEnded(roomID string) {
	ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
	defer cancel()
	if err := h.feed.MarkEnded(ctx, roomID); err != nil {
		h.log.Warn("feed_mark_ended_failed", zap.String("room_id", roomID), zap.Error(err))
	}
}
