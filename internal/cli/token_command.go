package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"todo-list/internal/auth"
	"todo-list/internal/config"
	"todo-list/internal/errors"
)

// TokenCommand signs an HS256 bearer token for an owner, for local use
// against the API.
type TokenCommand struct {
	config *config.Config
	owner  string
	out    io.Writer
	ttl    time.Duration
}

// NewTokenCommand creates a new token command handler. A zero ttl uses
// the configured token lifetime.
func NewTokenCommand(cfg *config.Config, owner string, ttl time.Duration, out io.Writer) *TokenCommand {
	return &TokenCommand{config: cfg, owner: owner, ttl: ttl, out: out}
}

// Execute runs the token command
func (c *TokenCommand) Execute(ctx context.Context, args []string) error {
	owner := strings.TrimSpace(c.owner)
	if owner == "" {
		return errors.NewInvalidInputError("owner", "", "an owner is required (--owner or TODO_OWNER)")
	}
	if c.config.Auth.JWTSecret == "" {
		return errors.NewInvalidInputError("auth.jwt_secret", "", "a JWT secret is required to sign tokens")
	}

	ttl := c.ttl
	if ttl <= 0 {
		ttl = c.config.Auth.TokenTTL
	}
	token, err := auth.IssueToken([]byte(c.config.Auth.JWTSecret), owner, ttl, c.config.Auth.Audience, c.config.Auth.Issuer, timeNow())
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(c.out, token)
	return nil
}
