package bridge

type Options struct {
	URL             string `short:"u" long:"url" description:"remote mcp url" required:"true"`
	Token           string `short:"t" long:"token" description:"bearer token" env:"MCP_REMOTE_TOKEN"`
	TokenURL        string `long:"token-url" description:"scy secret resource holding the bearer token"`
	OAuth2ConfigURL string `short:"c" long:"config" description:"oauth2 client credentials config resource"`
	EncryptionKey   string `short:"k" long:"key" description:"encryption key for scy resources"`
	Headers         string `short:"H" long:"headers" description:"extra headers as a JSON object"`

	// AuthHeader optionally duplicates the bearer token under a custom header
	// name (e.g. X-Auth-Token) for remotes that do not read Authorization.
	AuthHeader string `long:"auth-header" description:"additional header name carrying the bearer token"`

	HandshakeTimeoutSec int  `long:"handshake-timeout" description:"seconds to wait for the event stream handshake" default:"15"`
	Debug               bool `short:"d" long:"debug" description:"verbose diagnostics on stderr"`
}
