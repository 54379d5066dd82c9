package endpoint

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Headers merges a bearer credential with caller supplied extra headers into
// a single header set. Extra headers are layered last so a caller can replace
// the derived Authorization entry with a custom scheme. A non-empty altHeader
// additionally carries the raw token under that name, for remotes that
// authenticate on a custom header instead of (or besides) Authorization.
//
// A non-empty extraJSON that does not parse as a JSON object is a fatal
// configuration error: serving with partial auth would be ambiguous.
func Headers(token, extraJSON, altHeader string) (http.Header, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
		if altHeader != "" {
			header.Set(altHeader, token)
		}
	}
	if extraJSON == "" {
		return header, nil
	}
	var extra map[string]string
	if err := json.Unmarshal([]byte(extraJSON), &extra); err != nil {
		return nil, fmt.Errorf("invalid extra headers %q: %w", extraJSON, err)
	}
	for k, v := range extra {
		header.Set(k, v)
	}
	return header, nil
}
