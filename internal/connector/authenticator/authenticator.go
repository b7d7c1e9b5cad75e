// Package authenticator prepares outbound HTTP requests with credentials.
// Grounded on the teacher's authenticator.go (BasicAuthenticator,
// BearerAuthenticator, the oauth2 client-credentials wrapper), stripped
// of its profiler-event plumbing since this module has no TUI profiler
// dimension to feed.
package authenticator

import (
	"context"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"
)

// Authenticator prepares req with whatever credentials it holds.
type Authenticator interface {
	PrepareRequest(ctx context.Context, req *http.Request) error
}

// None applies no credentials, per spec.md's implicit default connector
// configuration.
type None struct{}

func (None) PrepareRequest(context.Context, *http.Request) error { return nil }

// Basic applies HTTP Basic authentication.
type Basic struct {
	Username string
	Password string
}

func (a Basic) PrepareRequest(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// Bearer applies a static bearer token.
type Bearer struct {
	Token string
}

func (a Bearer) PrepareRequest(_ context.Context, req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// OAuth2ClientCredentials runs the client-credentials grant via
// golang.org/x/oauth2/clientcredentials and injects the resulting access
// token as a bearer header. Tokens are not cached: every PrepareRequest
// call requests a new one from the token endpoint.
type OAuth2ClientCredentials struct {
	cfg *clientcredentials.Config
}

func NewOAuth2ClientCredentials(clientID, clientSecret, tokenURL string, scopes []string) *OAuth2ClientCredentials {
	return &OAuth2ClientCredentials{
		cfg: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

func (a *OAuth2ClientCredentials) PrepareRequest(ctx context.Context, req *http.Request) error {
	token, err := a.cfg.Token(ctx)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	return nil
}
