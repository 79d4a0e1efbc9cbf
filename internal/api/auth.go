package api

import (
	"context"

	"github.com/vlogdeck/vlogdeck/internal/cache"
	"github.com/vlogdeck/vlogdeck/internal/domain"
)

var _ domain.AuthAPI = (*Client)(nil)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token and the session identity.
func (c *Client) Login(ctx context.Context, username, password string) (domain.AuthResult, error) {
	raw, err := c.post(ctx, "/api/v1/auth/login", credentials{Username: username, Password: password})
	if err != nil {
		return domain.AuthResult{}, err
	}
	return cache.DecodeResource[domain.AuthResult](raw)
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, username, password string) (domain.AuthResult, error) {
	raw, err := c.post(ctx, "/api/v1/auth/register", credentials{Username: username, Password: password})
	if err != nil {
		return domain.AuthResult{}, err
	}
	return cache.DecodeResource[domain.AuthResult](raw)
}

// Me returns the session for the current bearer token.
func (c *Client) Me(ctx context.Context) (domain.Session, error) {
	raw, err := c.get(ctx, "/api/v1/auth/me")
	if err != nil {
		return domain.Session{}, err
	}
	return cache.DecodeResource[domain.Session](raw)
}
