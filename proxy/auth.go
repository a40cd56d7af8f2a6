package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"k8s.io/client-go/rest"
)

// DefaultAccessTokenHeader is set by the oauth proxy in front of the dashboard
const DefaultAccessTokenHeader = "X-Forwarded-Access-Token"

// ErrNoAccessToken is returned when the caller's token cannot be derived
var ErrNoAccessToken = errors.New("no access token available for the caller")

// RequestTokenSource takes the caller's token from a forwarded header.
// In development there is no oauth proxy, so it falls back to the kube config credentials.
type RequestTokenSource struct {
	Header   string
	Fallback *rest.Config
}

var _ = TokenSource(new(RequestTokenSource))

// Token implements TokenSource
func (s *RequestTokenSource) Token(r *http.Request) (string, error) {
	header := s.Header
	if header == "" {
		header = DefaultAccessTokenHeader
	}
	if token := strings.TrimSpace(r.Header.Get(header)); token != "" {
		return token, nil
	}

	if s.Fallback == nil {
		return "", ErrNoAccessToken
	}
	if s.Fallback.BearerToken != "" {
		return s.Fallback.BearerToken, nil
	}
	if s.Fallback.BearerTokenFile != "" {
		data, err := os.ReadFile(s.Fallback.BearerTokenFile)
		if err != nil {
			return "", fmt.Errorf("read token file: %w", err)
		}
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	}
	return "", ErrNoAccessToken
}

// attachToken sets the bearer token, replacing any Authorization the caller sent
func attachToken(h http.Header, token string) {
	h.Set("Authorization", "Bearer "+token)
}
