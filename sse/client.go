package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/wwardha/mcp-remote/internal/collection"
)

const (
	stateConnecting int32 = iota
	stateReady
	stateFailed
	stateClosed
)

// maxErrorBody caps how much of a failed HTTP response is decoded for diagnostics.
const maxErrorBody = 4096

const defaultHandshakeTimeout = 15 * time.Second

// Client is an event-stream JSON-RPC transport: inbound messages arrive as
// server-pushed data frames, outbound messages are POSTed to the endpoint the
// server announced during the handshake.
type Client struct {
	streamURL *url.URL

	// messageURL is discovered from the endpoint handshake event; immutable once set.
	messageURL *url.URL
	header     http.Header

	httpClient        *http.Client
	messageHTTPClient *http.Client

	handler transport.Handler
	onError func(error)
	onClose func()

	handshakeTimeout time.Duration

	pending *collection.SyncMap[string, chan *jsonrpc.Response]
	counter atomic.Uint64

	state     atomic.Int32
	mux       sync.RWMutex // guards messageURL and streamErr
	streamErr error

	runCtx    context.Context
	stop      context.CancelFunc
	closeOnce sync.Once
}

// New opens the event stream with the configured headers and blocks until the
// remote announces the message endpoint, the handshake fails, or the
// handshake timeout elapses. Setup errors are returned synchronously; a
// failed attempt leaves no connection behind.
func New(ctx context.Context, URL string, options ...Option) (*Client, error) {
	streamURL, err := url.Parse(URL)
	if err != nil {
		return nil, fmt.Errorf("invalid stream URL %q: %w", URL, err)
	}
	runCtx, stop := context.WithCancel(context.Background())
	ret := &Client{
		streamURL:         streamURL,
		header:            http.Header{},
		httpClient:        &http.Client{},
		messageHTTPClient: &http.Client{},
		handshakeTimeout:  defaultHandshakeTimeout,
		pending:           collection.NewSyncMap[string, chan *jsonrpc.Response](),
		runCtx:            runCtx,
		stop:              stop,
	}
	for _, option := range options {
		option(ret)
	}
	if err := ret.connect(ctx); err != nil {
		ret.state.Store(stateFailed)
		stop()
		return nil, err
	}
	return ret, nil
}

func (c *Client) connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(c.runCtx, http.MethodGet, c.streamURL.String(), nil)
	if err != nil {
		return err
	}
	for k, values := range c.header {
		for _, value := range values {
			req.Header.Add(k, value)
		}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return fmt.Errorf("event stream status %v: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if contentType := resp.Header.Get("Content-Type"); !strings.Contains(contentType, "text/event-stream") {
		_ = resp.Body.Close()
		return fmt.Errorf("unexpected stream content type %q", contentType)
	}

	handshake := make(chan error, 1)
	go c.listen(resp.Body, handshake)

	select {
	case err := <-handshake:
		if err != nil {
			return err
		}
		c.state.Store(stateReady)
		return nil
	case <-time.After(c.handshakeTimeout):
		return fmt.Errorf("timeout waiting for endpoint handshake after %s", c.handshakeTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MessageURL returns the discovered write-back endpoint, or an empty string
// before the handshake completed.
func (c *Client) MessageURL() string {
	c.mux.RLock()
	defer c.mux.RUnlock()
	if c.messageURL == nil {
		return ""
	}
	return c.messageURL.String()
}

// NextRequestID returns a new request identifier.
func (c *Client) NextRequestID() jsonrpc.RequestId {
	return c.counter.Add(1)
}

// LastRequestID returns the most recently issued request identifier.
func (c *Client) LastRequestID() jsonrpc.RequestId {
	return c.counter.Load()
}

// Send posts the request to the discovered message endpoint and waits for the
// correlated response, which arrives either in the POST reply body or as a
// later stream frame.
func (c *Client) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	c.mux.RLock()
	messageURL := c.messageURL
	c.mux.RUnlock()
	if messageURL == nil {
		return nil, fmt.Errorf("transport not ready: message endpoint not discovered yet")
	}
	if request.Id == nil {
		request.Id = c.NextRequestID()
	}
	if request.Jsonrpc == "" {
		request.Jsonrpc = jsonrpc.Version
	}

	key := idKey(request.Id)
	response := make(chan *jsonrpc.Response, 1)
	c.pending.Put(key, response)
	defer c.pending.Take(key)

	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	unbind := context.AfterFunc(c.runCtx, cancel)
	defer unbind()

	reply, err := c.post(sendCtx, request)
	if err != nil {
		return nil, err
	}
	if reply != nil && idKey(reply.Id) == key && (reply.Result != nil || reply.Error != nil) {
		return reply, nil
	}

	select {
	case ret, ok := <-response:
		if !ok {
			return nil, fmt.Errorf("event stream closed awaiting response: %w", c.cause())
		}
		return ret, nil
	case <-sendCtx.Done():
		return nil, sendCtx.Err()
	}
}

// Notify posts the notification to the discovered message endpoint.
func (c *Client) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	c.mux.RLock()
	messageURL := c.messageURL
	c.mux.RUnlock()
	if messageURL == nil {
		return fmt.Errorf("transport not ready: message endpoint not discovered yet")
	}
	_, err := c.post(ctx, notification)
	return err
}

// post writes one JSON envelope to the message endpoint. A non-success status
// is returned as an error carrying the status and a bounded slice of the
// response body; it does not close the session. A success reply that decodes
// as a response envelope is handed back for immediate correlation.
func (c *Client) post(ctx context.Context, payload interface{}) (*jsonrpc.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	c.mux.RLock()
	messageURL := c.messageURL.String()
	c.mux.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messageURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for k, values := range c.header {
		for _, value := range values {
			req.Header.Add(k, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.messageHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("message endpoint status %v: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil, nil
	}
	var reply jsonrpc.Response
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, nil
	}
	return &reply, nil
}

// Close tears the transport down: it aborts the stream and any in-flight
// POSTs and fires the close callback. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.state.Store(stateClosed)
		c.stop()
		for _, ch := range c.pending.Drain() {
			close(ch)
		}
		if c.onClose != nil {
			c.onClose()
		}
	})
	return nil
}

// fail records a stream-level failure. Before the handshake completed it
// resolves the pending connect; afterwards it is surfaced to the owner and
// fails all in-flight calls. Reconnection policy belongs to the owner.
func (c *Client) fail(err error, handshake chan<- error) {
	if c.runCtx.Err() != nil || c.state.Load() == stateClosed {
		return
	}
	if c.state.Load() == stateConnecting {
		select {
		case handshake <- err:
		default:
		}
		return
	}
	c.mux.Lock()
	c.streamErr = err
	c.mux.Unlock()
	for _, ch := range c.pending.Drain() {
		close(ch)
	}
	c.report(err)
}

func (c *Client) cause() error {
	c.mux.RLock()
	defer c.mux.RUnlock()
	if c.streamErr != nil {
		return c.streamErr
	}
	return io.ErrUnexpectedEOF
}

func (c *Client) report(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

func idKey(id jsonrpc.RequestId) string {
	return fmt.Sprintf("%v", id)
}

var _ transport.Transport = (*Client)(nil)
