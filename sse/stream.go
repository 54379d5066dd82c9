package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/viant/jsonrpc"
)

// eventEndpoint is the named handshake event carrying the write-back location.
const eventEndpoint = "endpoint"

// message is the generic JSON-RPC envelope carried by stream data frames.
// The transport never looks past this envelope: payloads are forwarded opaque.
type message struct {
	Jsonrpc string            `json:"jsonrpc,omitempty"`
	Id      jsonrpc.RequestId `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  json.RawMessage   `json:"params,omitempty"`
	Result  json.RawMessage   `json:"result,omitempty"`
	Error   *jsonrpc.Error    `json:"error,omitempty"`
}

// listen reads the event stream until it ends. Frames are accumulated per the
// text/event-stream framing: `event:` names the event, `data:` lines gather
// the payload, a blank line dispatches, `:` lines are keep-alive comments.
func (c *Client) listen(body io.ReadCloser, handshake chan<- error) {
	defer body.Close()
	reader := bufio.NewReader(body)

	var eventName string
	var dataLines []string
	flush := func() {
		if eventName == "" && len(dataLines) == 0 {
			return
		}
		name, data := eventName, strings.Join(dataLines, "\n")
		eventName, dataLines = "", nil
		c.dispatch(name, data, handshake)
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				err = fmt.Errorf("event stream ended: %w", io.ErrUnexpectedEOF)
			}
			c.fail(err, handshake)
			return
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
}

func (c *Client) dispatch(event, data string, handshake chan<- error) {
	switch event {
	case eventEndpoint:
		c.handleHandshake(data, handshake)
	case "", "message":
		c.handleMessage(data)
	}
}

// handleHandshake resolves the announced write-back location. A second
// endpoint event leaves the already discovered endpoint untouched.
func (c *Client) handleHandshake(data string, handshake chan<- error) {
	c.mux.Lock()
	if c.messageURL != nil {
		c.mux.Unlock()
		return
	}
	c.mux.Unlock()

	resolved, err := resolveMessageURL(c.streamURL, data)
	if err != nil {
		select {
		case handshake <- err:
		default:
			c.report(err)
		}
		return
	}
	c.mux.Lock()
	c.messageURL = resolved
	c.mux.Unlock()
	select {
	case handshake <- nil:
	default:
	}
}

// handleMessage routes one data frame: responses resolve a pending call,
// requests are served through the registered handler with the reply POSTed
// back, notifications go to the handler callback. A frame that fails to parse
// is reported without terminating the stream.
func (c *Client) handleMessage(data string) {
	var msg message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		c.report(fmt.Errorf("malformed frame %q: %w", data, err))
		return
	}
	switch {
	case msg.Method != "" && msg.Id != nil:
		go c.serveRequest(&msg)
	case msg.Method != "":
		if c.handler != nil {
			c.handler.OnNotification(c.runCtx, &jsonrpc.Notification{Method: msg.Method, Params: msg.Params})
		}
	case msg.Id != nil:
		if ch, ok := c.pending.Take(idKey(msg.Id)); ok {
			ch <- &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: msg.Id, Result: msg.Result, Error: msg.Error}
		}
	default:
		c.report(fmt.Errorf("frame with neither id nor method: %q", data))
	}
}

func (c *Client) serveRequest(msg *message) {
	request := &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: msg.Id, Method: msg.Method, Params: msg.Params}
	response := &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: msg.Id}
	if c.handler == nil {
		response.Error = jsonrpc.NewMethodNotFound("no handler registered", msg.Params)
	} else {
		c.handler.Serve(c.runCtx, request, response)
	}
	if _, err := c.post(c.runCtx, response); err != nil {
		c.report(fmt.Errorf("failed to deliver %v response: %w", msg.Method, err))
	}
}
