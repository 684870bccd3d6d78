package penlive

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var (
	// ErrTransport is the error signal set when the transport reports an error.
	ErrTransport = errors.New("websocket connection error")

	// ErrMaxReconnect is the error signal set once reconnect attempts are exhausted.
	ErrMaxReconnect = errors.New("max reconnection attempts reached")

	// ErrNoTarget is returned by Reconnect when there is nothing to reconnect to.
	ErrNoTarget = errors.New("no target to connect to")
)

// Client keeps the latest payload of a live endpoint, reconnecting with backoff when the
// connection drops. The exported fields may be changed before the first Connect.
type Client[T any] struct {
	Transport            Transport
	Decoder              Decoder[T]
	Logger               *zap.Logger
	Clock                clockwork.Clock
	BackOff              backoff.BackOff
	MaxReconnectAttempts int
	RequestHeader        http.Header
	Metrics              *Metrics

	// OnMessage is called with every decoded payload, in receive order, with the client
	// lock held. It must not call back into the Client.
	OnMessage func(T)

	mu       sync.Mutex
	session  uint64
	target   string
	endPoint url.URL
	conn     Conn
	timer    *reconnectTimer
	state    State
	payload  *T
	err      string
	changed  chan struct{}
}

func NewClient[T any]() *Client[T] {
	return &Client[T]{
		Transport:            NewWebsocket(nil),
		Decoder:              NewJSONDecoder[T](),
		Logger:               zap.NewNop(),
		Clock:                clockwork.NewRealClock(),
		BackOff:              defaultReconnectBackOff(),
		MaxReconnectAttempts: defaultMaxReconnectAttempts,
		changed:              make(chan struct{}, 1),
	}
}

// Connect points the client at target. Any current connection and pending reconnect are
// dropped first. An empty target leaves the client idle.
func (c *Client[T]) Connect(target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connect(target)
}

// Reconnect starts over against the current target with a fresh attempt counter.
func (c *Client[T]) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.target == "" {
		return ErrNoTarget
	}
	return c.connect(c.target)
}

// Close drops the connection and any pending reconnect. Nothing changes after it returns
// until the next Connect. It is safe to call more than once.
func (c *Client[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardown()
	c.target = ""
	c.setState(Idle)
}

// Changed is signalled whenever the snapshot changes. Signals coalesce, so a slow reader
// only ever sees the latest state.
func (c *Client[T]) Changed() <-chan struct{} {
	return c.changed
}

// Snapshot returns the current payload, error and state. The payload must not be modified.
func (c *Client[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	attempt := 0
	if c.timer != nil {
		attempt = c.timer.Tries()
	}
	return Snapshot[T]{
		Payload: c.payload,
		Err:     c.err,
		State:   c.state,
		Attempt: attempt,
		Target:  c.target,
	}
}

// Latest returns the last decoded payload and whether there has been one.
func (c *Client[T]) Latest() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.payload == nil {
		var zero T
		return zero, false
	}
	return *c.payload, true
}

// Err returns the error signal, empty while the channel is healthy.
func (c *Client[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client[T]) connect(target string) error {
	c.teardown()

	if target == "" {
		c.target = ""
		c.setState(Idle)
		return nil
	}

	endPoint, err := url.Parse(target)
	if err != nil {
		c.Logger.Error("Invalid live target", zap.Error(err))
		c.target = ""
		c.setState(Idle)
		return fmt.Errorf("invalid target: %w", err)
	}

	c.target = target
	c.endPoint = *endPoint
	c.timer = newReconnectTimer(c.Clock, c.BackOff)
	c.timer.Reset()
	c.open()
	return nil
}

// teardown invalidates the current session so its late events are ignored.
func (c *Client[T]) teardown() {
	c.session++

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client[T]) open() {
	c.setState(Connecting)
	c.Metrics.connectionAttempt()

	c.Logger.Info("Connecting to live endpoint",
		zap.String("target", redactTarget(c.endPoint)),
		zap.Int("attempt", c.timer.Tries()),
	)

	c.conn = c.Transport.Open(c.endPoint, c.RequestHeader, &sessionHandler[T]{
		client:  c,
		session: c.session,
	})
}

func (c *Client[T]) handleOpen(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session {
		return
	}

	c.timer.Reset()
	c.err = ""
	c.setState(Open)
	c.Logger.Info("Live channel connected", zap.String("target", redactTarget(c.endPoint)))
	c.notify()
}

func (c *Client[T]) handleMessage(session uint64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session {
		return
	}

	payload, err := c.Decoder.Decode(data)
	if err == nil && payload == nil {
		err = errors.New("decoder returned no payload")
	}
	if err != nil {
		c.Metrics.decodeError()
		c.Logger.Warn("Failed to parse live message",
			zap.Error(err),
			zap.Int("message_length", len(data)),
		)
		return
	}

	c.payload = payload
	c.Metrics.message()
	c.notify()

	if c.OnMessage != nil {
		c.OnMessage(*payload)
	}
}

func (c *Client[T]) handleError(session uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session {
		return
	}

	c.err = ErrTransport.Error()
	c.Metrics.transportError()
	c.Logger.Warn("Live channel error", zap.Error(err))
	c.notify()
}

func (c *Client[T]) handleClose(session uint64, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session {
		return
	}

	c.conn = nil
	c.setState(Closed)
	c.Logger.Info("Live channel closed", zap.Int("code", code))

	if c.timer.Tries() < c.MaxReconnectAttempts {
		delay, ok := c.timer.Schedule(func() { c.reconnect(session) })
		if ok {
			c.setState(Reconnecting)
			c.Metrics.reconnect()
			c.Logger.Info("Reconnecting to live endpoint",
				zap.Duration("delay", delay),
				zap.Int("attempt", c.timer.Tries()),
			)
			c.notify()
			return
		}
	}

	c.setState(Failed)
	c.err = ErrMaxReconnect.Error()
	c.Metrics.exhausted()
	c.Logger.Error("Giving up on live endpoint",
		zap.String("target", redactTarget(c.endPoint)),
		zap.Int("attempts", c.timer.Tries()),
	)
	c.notify()
}

func (c *Client[T]) reconnect(session uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if session != c.session {
		return
	}

	c.timer.fired()
	c.open()
}

func (c *Client[T]) setState(state State) {
	if c.state != state {
		c.Logger.Debug("Live channel state changed",
			zap.String("from", c.state.String()),
			zap.String("to", state.String()),
		)
	}
	c.state = state
	c.Metrics.state(state)
}

func (c *Client[T]) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// sessionHandler tags transport events with the session they belong to.
type sessionHandler[T any] struct {
	client  *Client[T]
	session uint64
}

func (h *sessionHandler[T]) OnConnOpen() {
	h.client.handleOpen(h.session)
}

func (h *sessionHandler[T]) OnConnMessage(data []byte) {
	h.client.handleMessage(h.session, data)
}

func (h *sessionHandler[T]) OnConnError(err error) {
	h.client.handleError(h.session, err)
}

func (h *sessionHandler[T]) OnConnClose(code int) {
	h.client.handleClose(h.session, code)
}

// redactTarget hides the access token carried in the query string.
func redactTarget(endPoint url.URL) string {
	query := endPoint.Query()
	if query.Has("token") {
		query.Set("token", "xxxxx")
		endPoint.RawQuery = query.Encode()
	}
	return endPoint.Redacted()
}
