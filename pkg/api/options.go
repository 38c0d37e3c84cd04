package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient sets the base HTTP client. Its transport is wrapped when a
// token is configured.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithToken authenticates requests with a static bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		if token == "" {
			return
		}
		c.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	}
}

// WithTokenSource authenticates requests with tokens from source.
func WithTokenSource(source oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = source
	}
}

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for request traces.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = agent
	}
}

// WithIdempotencyKeys overrides the generator of Idempotency-Key values sent
// on create. Defaults to random UUIDs.
func WithIdempotencyKeys(next func() string) Option {
	return func(c *Client) {
		if next != nil {
			c.newKey = next
		}
	}
}

func newIdempotencyKey() string {
	return uuid.NewString()
}
