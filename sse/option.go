package sse

import (
	"net/http"
	"time"

	"github.com/viant/jsonrpc/transport"
)

// Option represents option
type Option func(c *Client)

// WithHandler registers the handler that receives server initiated requests
// and notifications arriving on the stream.
func WithHandler(handler transport.Handler) Option {
	return func(c *Client) {
		c.handler = handler
	}
}

// WithHeaders attaches the supplied headers to the stream request and to
// every message POST.
func WithHeaders(header http.Header) Option {
	return func(c *Client) {
		c.header = header.Clone()
	}
}

// WithHttpClient sets the client used for the long-lived stream connection.
func WithHttpClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithMessageHttpClient sets the client used for message POSTs.
func WithMessageHttpClient(client *http.Client) Option {
	return func(c *Client) {
		c.messageHTTPClient = client
	}
}

// WithHandshakeTimeout bounds the wait for the endpoint handshake event.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.handshakeTimeout = timeout
	}
}

// WithErrorHandler registers a callback for errors surfaced after the
// connection is established (stream failures, malformed frames, undeliverable
// replies). Setup errors are returned by New instead.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Client) {
		c.onError = fn
	}
}

// WithCloseHandler registers a callback invoked exactly once when the client
// is closed.
func WithCloseHandler(fn func()) Option {
	return func(c *Client) {
		c.onClose = fn
	}
}
