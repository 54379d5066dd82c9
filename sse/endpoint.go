package sse

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/wwardha/mcp-remote/endpoint"
)

// payloadKind classifies the shape of an endpoint handshake payload.
type payloadKind int

const (
	payloadAbsoluteURL payloadKind = iota
	payloadRootedPath
	payloadRelativePath
)

func classifyPayload(ref *url.URL) payloadKind {
	switch {
	case ref.IsAbs():
		return payloadAbsoluteURL
	case strings.HasPrefix(ref.Path, "/"):
		return payloadRootedPath
	default:
		return payloadRelativePath
	}
}

// resolveMessageURL resolves an endpoint handshake payload against the stream
// URL. An absolute URL is taken verbatim, an absolute path is resolved
// against the stream's origin, and a relative path is resolved against the
// directory containing the stream URL's path. Remote implementations disagree
// on whether a relative payload is mount-relative or stream-relative, so a
// payload repeating the mount segment that already terminates the stream
// directory is collapsed rather than joined into a doubled segment.
//
// Whatever the shape, the resolved location must share the stream's origin.
func resolveMessageURL(stream *url.URL, payload string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("malformed endpoint payload %q: %w", payload, err)
	}
	var resolved *url.URL
	switch classifyPayload(ref) {
	case payloadAbsoluteURL:
		resolved = ref
	case payloadRootedPath:
		resolved = stream.ResolveReference(ref)
	default:
		dir := path.Dir(stream.Path)
		if strings.HasSuffix(dir, "/"+endpoint.Mount) || dir == endpoint.Mount {
			ref.Path = strings.TrimPrefix(ref.Path, endpoint.Mount+"/")
		}
		resolved = stream.ResolveReference(ref)
		resolved.Path = collapseMount(resolved.Path)
	}
	if origin := endpoint.Origin(resolved.String()); origin != endpoint.Origin(stream.String()) {
		return nil, fmt.Errorf("endpoint origin %v does not match stream origin %v", origin, endpoint.Origin(stream.String()))
	}
	return resolved, nil
}

// collapseMount removes a doubled mount segment left over from joining a
// mount-relative payload onto a mount-terminated directory.
func collapseMount(p string) string {
	doubled := "/" + endpoint.Mount + "/" + endpoint.Mount
	for {
		switch {
		case strings.Contains(p, doubled+"/"):
			p = strings.Replace(p, doubled+"/", "/"+endpoint.Mount+"/", 1)
		case strings.HasSuffix(p, doubled):
			p = strings.TrimSuffix(p, doubled) + "/" + endpoint.Mount
		default:
			return p
		}
	}
}
