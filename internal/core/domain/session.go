package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedSession is raised by session stores when persisted state does
// not decode into a valid projection. It is handled inside the store, which
// clears the record and reports no session.
var ErrMalformedSession = errors.New("malformed session state")

// EncodeSession serializes the persisted session record {id, username, role, name}.
func EncodeSession(p Projection) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// DecodeSession parses a persisted session record.
func DecodeSession(raw []byte) (Projection, error) {
	var p Projection
	if err := json.Unmarshal(raw, &p); err != nil {
		return Projection{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if err := p.Validate(); err != nil {
		return Projection{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	return p, nil
}

type actorKey struct{}

// WithActor tags ctx with the account performing the operation, for auditing.
func WithActor(ctx context.Context, p Projection) context.Context {
	return context.WithValue(ctx, actorKey{}, p)
}

// ActorFrom returns the account stored by WithActor, if any.
func ActorFrom(ctx context.Context) (Projection, bool) {
	p, ok := ctx.Value(actorKey{}).(Projection)
	return p, ok
}
