package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

const defaultSessionTTL = 24 * time.Hour

// SessionStore persists one projection per client.
// Key format: portal:session:<client_id>
// Each account also keeps the set of its clients under
// portal:account-sessions:<account_id> so updates can reach every browser.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

func NewSessionStore(client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl, log: log}
}

func (s *SessionStore) Establish(ctx context.Context, clientID string, p domain.Projection) error {
	raw, err := domain.EncodeSession(p)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(clientID), raw, s.ttl)
		pipe.SAdd(ctx, accountKey(p.ID), clientID)
		pipe.Expire(ctx, accountKey(p.ID), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	return nil
}

// Current returns the projection stored for clientID. A record that cannot be
// decoded is deleted and reported as absent.
func (s *SessionStore) Current(ctx context.Context, clientID string) (domain.Projection, bool, error) {
	return s.load(ctx, clientID)
}

func (s *SessionStore) Clear(ctx context.Context, clientID string) error {
	p, ok, err := s.load(ctx, clientID)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(clientID))
		if ok {
			pipe.SRem(ctx, accountKey(p.ID), clientID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Sync rewrites every session of p.ID with the new projection, keeping the
// remaining TTL of each record.
func (s *SessionStore) Sync(ctx context.Context, p domain.Projection) error {
	raw, err := domain.EncodeSession(p)
	if err != nil {
		return err
	}

	clients, err := s.clientsOf(ctx, p.ID)
	if err != nil {
		return err
	}

	for _, cid := range clients {
		if err := s.client.SetArgs(ctx, sessionKey(cid), raw, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("sync session %s: %w", cid, err)
		}
	}
	return nil
}

func (s *SessionStore) ClearAccount(ctx context.Context, accountID string) error {
	clients, err := s.clientsOf(ctx, accountID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(clients)+1)
	for _, cid := range clients {
		keys = append(keys, sessionKey(cid))
	}
	keys = append(keys, accountKey(accountID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear account sessions: %w", err)
	}
	return nil
}

func (s *SessionStore) load(ctx context.Context, clientID string) (domain.Projection, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Projection{}, false, nil
	}
	if err != nil {
		return domain.Projection{}, false, fmt.Errorf("load session: %w", err)
	}

	p, err := domain.DecodeSession(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID).Msg("discarding malformed session")
		if delErr := s.client.Del(ctx, sessionKey(clientID)).Err(); delErr != nil {
			s.log.Error().Err(delErr).Str("client_id", clientID).Msg("failed to delete malformed session")
		}
		return domain.Projection{}, false, nil
	}
	return p, true, nil
}

// clientsOf returns the clients still holding a session of accountID and
// prunes index entries whose session expired or moved to another account.
func (s *SessionStore) clientsOf(ctx context.Context, accountID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, accountKey(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list account sessions: %w", err)
	}

	live := make([]string, 0, len(members))
	for _, cid := range members {
		p, ok, err := s.load(ctx, cid)
		if err != nil {
			return nil, err
		}
		if ok && p.ID == accountID {
			live = append(live, cid)
			continue
		}
		if err := s.client.SRem(ctx, accountKey(accountID), cid).Err(); err != nil {
			return nil, fmt.Errorf("prune account sessions: %w", err)
		}
	}
	return live, nil
}

func sessionKey(clientID string) string {
	return "portal:session:" + clientID
}

func accountKey(accountID string) string {
	return "portal:account-sessions:" + accountID
}
