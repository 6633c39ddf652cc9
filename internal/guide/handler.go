package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/metrics"
	"github.com/zjrosen/bloom/internal/pubsub"
	"github.com/zjrosen/bloom/internal/session"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades requests and runs one guided session per connection.
type Handler struct {
	catalog     session.Catalog
	sessionOpts []session.Option
	metrics     *metrics.Metrics
}

// Option configures a Handler.
type Option func(*Handler)

// WithSessionOptions passes options to every per-connection controller.
func WithSessionOptions(opts ...session.Option) Option {
	return func(h *Handler) { h.sessionOpts = append(h.sessionOpts, opts...) }
}

// WithMetrics counts open connections.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler creates a guide handler over catalog.
func NewHandler(catalog session.Catalog, opts ...Option) *Handler {
	h := &Handler{catalog: catalog}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorErr(log.CatGuide, "websocket upgrade failed", err, "remote", r.RemoteAddr)
		return
	}

	h.metrics.GuideConnected(1)
	defer h.metrics.GuideConnected(-1)
	log.Info(log.CatGuide, "guide connected", "remote", r.RemoteAddr)

	opts := append([]session.Option{session.WithMetrics(h.metrics)}, h.sessionOpts...)
	c := newConn(ws, session.New(h.catalog, opts...))
	c.run()
	log.Info(log.CatGuide, "guide disconnected", "remote", r.RemoteAddr)
}

// conn is one guide connection. Writes are serialized by mu.
type conn struct {
	ws   *websocket.Conn
	ctrl *session.Controller
	mu   sync.Mutex
}

func newConn(ws *websocket.Conn, ctrl *session.Controller) *conn {
	return &conn{ws: ws, ctrl: ctrl}
}

func (c *conn) run() {
	ctx, cancel := context.WithCancel(context.Background())
	events := c.ctrl.Broker().Subscribe(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.pump(ctx, events)
	}()

	c.read(ctx)

	cancel()
	c.ctrl.Close()
	wg.Wait()
	_ = c.ws.Close()
}

// read handles client messages until the connection fails.
func (c *conn) read(ctx context.Context) {
	_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.ErrorErr(log.CatGuide, "guide read failed", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := c.dispatch(ctx, msg); err != nil {
			c.sendError(err)
		}
	}
}

func (c *conn) dispatch(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case MsgStart:
		if msg.Intention == "" {
			return errors.New("start requires an intention")
		}
		_, err := c.ctrl.Start(ctx, msg.Intention)
		return err
	case MsgPress:
		c.ctrl.SetPressing(true)
	case MsgRelease:
		c.ctrl.SetPressing(false)
	case MsgReset:
		c.ctrl.Reset()
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

// pump forwards controller events and keeps the connection alive.
func (c *conn) pump(ctx context.Context, events <-chan pubsub.Event[session.Event]) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.write(fromEvent(ev.Type, ev.Payload)); err != nil {
				log.ErrorErr(log.CatGuide, "guide write failed", err)
				return
			}
		case <-ping.C:
			c.mu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *conn) write(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(msg)
}

func (c *conn) sendError(err error) {
	log.Warn(log.CatGuide, "guide request rejected", "error", err.Error())
	_ = c.write(ServerMessage{Type: MsgError, Error: err.Error()})
}
