package bridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/viant/jsonrpc/transport"
	stdiosrv "github.com/viant/jsonrpc/transport/server/stdio"
	"github.com/wwardha/mcp-remote/endpoint"
)

// Service owns the negotiated remote session and serves the local side.
// Exactly one session is active: the negotiator sets it during New and the
// dispatcher only reads it afterwards.
type Service struct {
	baseURL          string
	header           http.Header
	httpClient       *http.Client
	handshakeTimeout time.Duration
	logger           *logrus.Entry

	backchannel *backchannel
	remote      transport.Transport
	kind        string
}

// New resolves credentials and headers from the options and negotiates the
// remote transport. Configuration and negotiation errors are returned before
// any local serving starts.
func New(ctx context.Context, options *Options) (*Service, error) {
	if options.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logger := logrus.WithField("session", uuid.NewString())

	token, err := options.resolveToken(ctx)
	if err != nil {
		return nil, err
	}
	if expiry, ok := tokenExpiry(token); ok && time.Now().After(expiry) {
		logger.Warnf("bearer token expired at %v", expiry.Format(time.RFC3339))
	}
	header, err := endpoint.Headers(token, options.Headers, options.AuthHeader)
	if err != nil {
		return nil, err
	}
	httpClient, err := options.buildHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	handshakeTimeout := time.Duration(options.HandshakeTimeoutSec) * time.Second
	if handshakeTimeout <= 0 {
		handshakeTimeout = 15 * time.Second
	}

	s := &Service{
		baseURL:          options.URL,
		header:           header,
		httpClient:       httpClient,
		handshakeTimeout: handshakeTimeout,
		logger:           logger,
		backchannel:      &backchannel{},
	}
	if s.remote, s.kind, err = s.negotiate(ctx); err != nil {
		return nil, err
	}
	s.logger.WithField("transport", s.kind).Debug("connected")
	return s, nil
}

// Stdio returns a JSON-RPC server over standard input/output that forwards
// MCP calls to the remote session.
func (s *Service) Stdio(ctx context.Context) *stdiosrv.Server {
	return stdiosrv.New(ctx, s.newHandler)
}

func (s *Service) newHandler(_ context.Context, local transport.Transport) transport.Handler {
	s.backchannel.attach(local)
	return &Handler{remote: s.remote, logger: s.logger}
}

// Transport reports which transport negotiation selected.
func (s *Service) Transport() string {
	return s.kind
}

// Close tears down the remote session.
func (s *Service) Close() error {
	if closer, ok := s.remote.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close %v session: %w", s.kind, err)
		}
	}
	return nil
}
