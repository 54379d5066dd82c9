package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	streamable "github.com/viant/jsonrpc/transport/client/http/streamable"
	"github.com/viant/mcp-protocol/schema"
	"github.com/wwardha/mcp-remote/endpoint"
	"github.com/wwardha/mcp-remote/sse"
)

const (
	transportStreamable  = "streamable"
	transportEventStream = "sse"
)

// negotiate yields one ready remote session. The streamable HTTP form is
// attempted first — a single connection with no separate write endpoint is
// the cheaper path. Transport opens return values rather than unwinding, so
// any streamable failure falls through to exactly one event-stream attempt,
// whose error is final; a failed attempt leaves no state behind.
func (s *Service) negotiate(ctx context.Context) (transport.Transport, string, error) {
	streamURL := endpoint.StreamableURL(s.baseURL)
	if err := s.probe(ctx, streamURL); err != nil {
		s.logger.Debugf("streamable probe %v failed: %v", streamURL, err)
	} else if session, err := s.openStreamable(ctx, streamURL); err != nil {
		s.logger.Debugf("streamable open %v failed: %v", streamURL, err)
	} else {
		return session, transportStreamable, nil
	}

	sseURL := endpoint.EventStreamURL(s.baseURL)
	session, err := s.openEventStream(ctx, sseURL)
	if err != nil {
		return nil, "", fmt.Errorf("no usable transport at %v (streamable %v, event stream %v): %w", s.baseURL, streamURL, sseURL, err)
	}
	return session, transportEventStream, nil
}

// probe tests the URL for streamable HTTP support by POSTing an initialize
// handshake with the resolved headers. Legacy servers answer the streamable
// URL with 404/405.
func (s *Service) probe(ctx context.Context, URL string) error {
	params := &schema.InitializeRequestParams{
		Capabilities:    schema.ClientCapabilities{},
		ClientInfo:      schema.Implementation{Name: "mcp-remote", Version: "0.1"},
		ProtocolVersion: schema.LatestProtocolVersion,
	}
	request, err := jsonrpc.NewRequest(schema.MethodInitialize, params)
	if err != nil {
		return err
	}
	request.Id = 1
	request.Jsonrpc = jsonrpc.Version
	data, err := json.Marshal(request)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	for k := range s.header {
		req.Header.Set(k, s.header.Get(k))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("MCP-Protocol-Version", schema.LatestProtocolVersion)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %v", resp.StatusCode)
	}
	return nil
}

func (s *Service) openStreamable(ctx context.Context, URL string) (transport.Transport, error) {
	return streamable.New(ctx, URL,
		streamable.WithHandler(s.backchannel),
		streamable.WithHTTPClient(s.transportClient()))
}

func (s *Service) openEventStream(ctx context.Context, URL string) (transport.Transport, error) {
	return sse.New(ctx, URL,
		sse.WithHandler(s.backchannel),
		sse.WithHeaders(s.header),
		sse.WithHttpClient(s.httpClient),
		sse.WithMessageHttpClient(s.httpClient),
		sse.WithHandshakeTimeout(s.handshakeTimeout),
		sse.WithErrorHandler(func(err error) {
			s.logger.Warnf("event stream error: %v", err)
		}))
}

// transportClient wraps the base HTTP client so the streamable transport
// carries the resolved headers on every request.
func (s *Service) transportClient() *http.Client {
	if len(s.header) == 0 {
		return s.httpClient
	}
	return &http.Client{Transport: &headerRoundTripper{header: s.header, base: s.httpClient.Transport}}
}
