package bridge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/scy"
	"github.com/viant/scy/auth/authorizer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// resolveToken returns the bearer token: an explicit token wins, otherwise a
// scy secret resource is loaded when configured.
func (o *Options) resolveToken(ctx context.Context) (string, error) {
	if o.Token != "" {
		return o.Token, nil
	}
	if o.TokenURL == "" {
		return "", nil
	}
	resource := &scy.Resource{URL: o.TokenURL, Key: o.EncryptionKey}
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load token from %v: %w", o.TokenURL, err)
	}
	return strings.TrimSpace(secret.String()), nil
}

// buildHTTPClient returns the HTTP client shared by the probe and both
// transports. With an OAuth2 config resource the client-credentials grant is
// used: the bridge runs headless as a subprocess, so interactive flows are
// not an option.
func (o *Options) buildHTTPClient(ctx context.Context) (*http.Client, error) {
	if o.OAuth2ConfigURL == "" {
		return &http.Client{}, nil
	}
	configURL := o.OAuth2ConfigURL
	if o.EncryptionKey != "" {
		configURL += "|" + o.EncryptionKey
	}
	auth := authorizer.New()
	oAuthConfig := &authorizer.OAuthConfig{ConfigURL: configURL}
	if err := auth.EnsureConfig(ctx, oAuthConfig); err != nil {
		return nil, fmt.Errorf("failed to load oauth2 config: %w", err)
	}
	cfg := oAuthConfig.Config
	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.Endpoint.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return oauth2.NewClient(ctx, credentials.TokenSource(ctx)), nil
}

// tokenExpiry reports the exp claim of a JWT shaped bearer. The token is not
// validated here; the claim is only used to warn about credentials the remote
// is guaranteed to reject.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}

// headerRoundTripper applies a fixed header set to every outgoing request.
// The streamable client owns its request construction, so resolved headers
// are injected at the HTTP layer, the same place an OAuth round tripper
// would put them.
type headerRoundTripper struct {
	header http.Header
	base   http.RoundTripper
}

func (r *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, values := range r.header {
		clone.Header.Del(k)
		for _, value := range values {
			clone.Header.Add(k, value)
		}
	}
	base := r.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
