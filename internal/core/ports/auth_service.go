package ports

import (
	"context"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Token    string
	ClientID string
	Account  domain.Projection
	Err      error
}

type AuthService interface {
	// Login checks the credentials and establishes the session of clientID.
	// An empty clientID starts a new client context.
	Login(ctx context.Context, clientID, username, password string) (*LoginResult, error)
	// LoginAsync runs Login in the background; the channel yields exactly one
	// result and may be abandoned by the caller.
	LoginAsync(ctx context.Context, clientID, username, password string) <-chan LoginResult
	Logout(ctx context.Context, clientID string)
	// Authenticate resolves a bearer token into the client id and live session.
	Authenticate(ctx context.Context, token string) (string, domain.Projection, error)
}
