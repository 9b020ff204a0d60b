package ports

import (
	"context"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// SessionStore persists the authenticated identity of each client. A client
// holds at most one session.
type SessionStore interface {
	// Establish overwrites whatever session clientID had.
	Establish(ctx context.Context, clientID string, p domain.Projection) error
	// Current reports the stored projection. Malformed state is cleared and
	// reported as no session; the error return is reserved for backend failures.
	Current(ctx context.Context, clientID string) (domain.Projection, bool, error)
	// Clear removes the session of clientID. Clearing a missing session is not an error.
	Clear(ctx context.Context, clientID string) error
	// Sync re-establishes p on every client currently holding a session for p.ID.
	Sync(ctx context.Context, p domain.Projection) error
	// ClearAccount removes every session that references accountID.
	ClearAccount(ctx context.Context, accountID string) error
}
