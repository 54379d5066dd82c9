// Package sse implements a JSON-RPC client transport over a server-sent
// event stream paired with out-of-band HTTP POSTs to a server-discovered
// message endpoint (the legacy MCP HTTP transport).
//
// The generic event-source client cannot attach request headers, which
// authenticated remotes require; this client sends the configured headers on
// the stream request and on every message POST. It satisfies the
// jsonrpc/transport.Transport interface, so it is interchangeable with the
// streamable HTTP client:
//
//	client, err := sse.New(ctx, "https://mcp.example.com/mcp/sse",
//		sse.WithHeaders(header),
//		sse.WithHandler(handler))
//
// New blocks until the remote announces the message endpoint via the
// `endpoint` handshake event, or the handshake fails. The announced location
// must share the stream's origin; anything else aborts the connection before
// credentials can leak to an unexpected host.
package sse
