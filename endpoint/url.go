package endpoint

import (
	"net/url"
	"strings"

	aurl "github.com/viant/afs/url"
)

const (
	// Mount is the RPC mount path segment remote MCP servers conventionally expose.
	Mount = "mcp"
	// StreamSuffix is the path suffix of the legacy event-stream endpoint.
	StreamSuffix = "sse"
)

// StreamableURL derives the streamable HTTP form of the base URL by ensuring
// the path ends with a separator. Servers that canonicalise non-slash paths
// answer them with a redirect, and custom headers do not survive redirects.
// The derivation is idempotent.
func StreamableURL(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// EventStreamURL derives the event-stream form of the base URL:
// a path already ending in the stream suffix is used as-is, a path ending in
// the RPC mount gets the suffix appended, anything else gets the default
// mount/suffix pair.
func EventStreamURL(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	p := strings.TrimSuffix(u.Path, "/")
	switch {
	case strings.HasSuffix(p, "/"+StreamSuffix):
		u.Path = p
	case strings.HasSuffix(p, "/"+Mount):
		u.Path = p + "/" + StreamSuffix
	default:
		u.Path = p + "/" + Mount + "/" + StreamSuffix
	}
	return u.String()
}

// Origin returns the scheme://host portion of the supplied URL.
func Origin(URL string) string {
	base, _ := aurl.Base(URL, "https")
	return base
}
