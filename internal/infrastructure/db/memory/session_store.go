package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// SessionStore keeps serialized session records keyed by client id, the same
// bytes the Redis store writes.
type SessionStore struct {
	mu      sync.Mutex
	records map[string][]byte
	log     zerolog.Logger
}

func NewSessionStore(log zerolog.Logger) *SessionStore {
	return &SessionStore{records: make(map[string][]byte), log: log}
}

func (s *SessionStore) Establish(_ context.Context, clientID string, p domain.Projection) error {
	raw, err := domain.EncodeSession(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[clientID] = raw
	return nil
}

func (s *SessionStore) Current(_ context.Context, clientID string) (domain.Projection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.records[clientID]
	if !ok {
		return domain.Projection{}, false, nil
	}
	p, err := domain.DecodeSession(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID).Msg("discarding malformed session")
		delete(s.records, clientID)
		return domain.Projection{}, false, nil
	}
	return p, true, nil
}

func (s *SessionStore) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, clientID)
	return nil
}

func (s *SessionStore) Sync(_ context.Context, p domain.Projection) error {
	raw, err := domain.EncodeSession(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for clientID := range s.matching(p.ID) {
		s.records[clientID] = raw
	}
	return nil
}

func (s *SessionStore) ClearAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for clientID := range s.matching(accountID) {
		delete(s.records, clientID)
	}
	return nil
}

// matching returns the clients whose decodable record references accountID.
// Callers hold mu.
func (s *SessionStore) matching(accountID string) map[string]struct{} {
	out := make(map[string]struct{})
	for clientID, raw := range s.records {
		p, err := domain.DecodeSession(raw)
		if err == nil && p.ID == accountID {
			out[clientID] = struct{}{}
		}
	}
	return out
}

