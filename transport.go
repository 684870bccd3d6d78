package penlive

import (
	"net/http"
	"net/url"
)

// Transport opens connections to a live endpoint. Open must not call into the handler before
// it returns; all events are delivered later, from the transport's own goroutine, in order.
type Transport interface {
	Open(endPoint url.URL, requestHeader http.Header, handler TransportHandler) Conn
}

// Conn is a handle to one connection opened by a Transport.
// Close is idempotent, is safe to call before the connection is established and, like Open,
// never calls the handler before returning.
type Conn interface {
	Close()
}

// TransportHandler receives the events of one connection. OnConnClose is always the last
// event of a connection, including when the dial itself failed.
type TransportHandler interface {
	OnConnOpen()
	OnConnMessage(data []byte)
	OnConnError(err error)
	OnConnClose(code int)
}
