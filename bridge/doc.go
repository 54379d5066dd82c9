// Package bridge implements the stdio↔remote MCP proxy service.
//
// The proxy stands in between a local process and a remote MCP server,
// forwarding JSON-RPC requests and responses while transparently handling
// transport and authentication concerns. It is used by the `mcp-remote`
// command one directory up, but can also be embedded programmatically if more
// control is required.
package bridge

// Transport negotiation
//
// The bridge negotiates the downstream transport of the remote MCP server: it
// first probes the streamable HTTP form of the configured URL (trailing
// slash, single endpoint) with an initialize POST. If the probe succeeds it
// opens the streamable client; on any failure it falls back exactly once to
// the authenticated event-stream client against the derived /sse URL. Bearer,
// custom-header and OAuth2 client-credentials authentication apply
// consistently to either transport.
