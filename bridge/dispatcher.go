package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"
)

// Handler forwards local RPC calls verbatim to the remote session. It is a
// pure pass-through: parameters, results and errors are relayed untouched,
// correlation is by message id, and capability negotiation is left to the
// remote — a call the remote does not support surfaces whatever error the
// remote returns.
type Handler struct {
	remote transport.Transport
	logger *logrus.Entry
}

func (h *Handler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = jsonrpc.Version
	if request.Jsonrpc != jsonrpc.Version {
		response.Error = jsonrpc.NewInvalidRequest("invalid JSON-RPC version", nil)
		return
	}
	switch request.Method {
	case schema.MethodInitialize, schema.MethodPing,
		schema.MethodToolsList, schema.MethodToolsCall,
		schema.MethodResourcesList, schema.MethodResourcesRead,
		schema.MethodPromptsList, schema.MethodPromptsGet:
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %v not found", request.Method), request.Params)
		return
	}
	upstream := &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Id: request.Id, Method: request.Method, Params: request.Params}
	reply, err := h.remote.Send(ctx, upstream)
	if err != nil {
		response.Error = jsonrpc.NewInternalError(err.Error(), request.Params)
		return
	}
	response.Result = reply.Result
	response.Error = reply.Error
}

func (h *Handler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	if err := h.remote.Notify(ctx, notification); err != nil {
		h.logger.Warnf("failed to relay %v notification: %v", notification.Method, err)
	}
}

// backchannel forwards server initiated traffic from the remote session to
// whichever local connection is currently attached. Before attachment the
// not-ready state is explicit: requests answer method-not-found and
// notifications are dropped.
type backchannel struct {
	mux   sync.RWMutex
	local transport.Transport
}

func (b *backchannel) attach(local transport.Transport) {
	b.mux.Lock()
	b.local = local
	b.mux.Unlock()
}

func (b *backchannel) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	b.mux.RLock()
	local := b.local
	b.mux.RUnlock()
	response.Id = request.Id
	response.Jsonrpc = jsonrpc.Version
	if local == nil {
		response.Error = jsonrpc.NewMethodNotFound("local endpoint not attached", request.Params)
		return
	}
	reply, err := local.Send(ctx, request)
	if err != nil {
		response.Error = jsonrpc.NewInternalError(err.Error(), request.Params)
		return
	}
	response.Result = reply.Result
	response.Error = reply.Error
}

func (b *backchannel) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	b.mux.RLock()
	local := b.local
	b.mux.RUnlock()
	if local == nil {
		return
	}
	_ = local.Notify(ctx, notification)
}
