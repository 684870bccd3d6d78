package penlive

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Websocket is the Transport backed by gorilla/websocket.
type Websocket struct {
	Dialer *websocket.Dialer
	Logger *zap.Logger
}

// NewWebsocket returns a transport dialing with dialer, or with a dialer using the default
// handshake timeout when dialer is nil.
func NewWebsocket(dialer *websocket.Dialer) *Websocket {
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultConnectTimeout,
		}
	}
	return &Websocket{
		Dialer: dialer,
		Logger: zap.NewNop(),
	}
}

func (w *Websocket) Open(endPoint url.URL, requestHeader http.Header, handler TransportHandler) Conn {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	conn := &websocketConn{
		id:      id,
		handler: handler,
		logger:  w.Logger.With(zap.String("connection_id", id)),
		cancel:  cancel,
	}
	go conn.run(ctx, w.Dialer, endPoint.String(), requestHeader)

	return conn
}

type websocketConn struct {
	id      string
	handler TransportHandler
	logger  *zap.Logger
	cancel  context.CancelFunc

	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

func (c *websocketConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		// attempt to gracefully close the connection by sending a close websocket message
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing connection")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
		_ = ws.Close()
	}
}

// release closes the socket once the read loop is done with it, before the close is
// reported.
func (c *websocketConn) release(ws *websocket.Conn) {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	_ = ws.Close()
}

func (c *websocketConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *websocketConn) run(ctx context.Context, dialer *websocket.Dialer, endPoint string, requestHeader http.Header) {
	ws, resp, err := dialer.DialContext(ctx, endPoint, requestHeader)
	if err != nil {
		if resp != nil {
			c.logger.Warn("WebSocket connection failed",
				zap.Error(err),
				zap.Int("status_code", resp.StatusCode),
			)
		} else {
			c.logger.Warn("WebSocket connection failed", zap.Error(err))
		}
		c.handler.OnConnError(err)
		c.handler.OnConnClose(closeAbnormal)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = ws.Close()
		c.handler.OnConnClose(websocket.CloseNormalClosure)
		return
	}
	c.ws = ws
	c.mu.Unlock()

	c.logger.Debug("WebSocket connected")
	c.handler.OnConnOpen()

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			closing := c.isClosed()
			c.release(ws)
			c.readFailed(err, closing)
			return
		}

		if messageType != websocket.TextMessage {
			c.logger.Debug("Ignoring non-text message",
				zap.Int("message_type", messageType),
				zap.Int("message_length", len(data)),
			)
			continue
		}

		c.handler.OnConnMessage(data)
	}
}

func (c *websocketConn) readFailed(err error, closing bool) {
	var closeErr *websocket.CloseError

	switch {
	case errors.As(err, &closeErr):
		c.logger.Debug("WebSocket closed by peer",
			zap.Int("code", closeErr.Code),
			zap.String("reason", closeErr.Text),
		)
		c.handler.OnConnClose(closeErr.Code)
	case closing:
		c.handler.OnConnClose(websocket.CloseNormalClosure)
	default:
		c.logger.Warn("WebSocket connection lost", zap.Error(err))
		c.handler.OnConnError(err)
		c.handler.OnConnClose(closeAbnormal)
	}
}
