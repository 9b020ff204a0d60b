package memory

import (
	"context"
	"sync"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

const defaultAuditCapacity = 1000

// AuditRepository keeps the most recent audit events in a bounded buffer.
type AuditRepository struct {
	mu       sync.RWMutex
	events   []domain.AuditEvent
	capacity int
}

func NewAuditRepository(capacity int) *AuditRepository {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditRepository{capacity: capacity}
}

func (r *AuditRepository) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *event)
	if over := len(r.events) - r.capacity; over > 0 {
		r.events = append([]domain.AuditEvent(nil), r.events[over:]...)
	}
	return nil
}

func (r *AuditRepository) List(_ context.Context, limit int) ([]domain.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]domain.AuditEvent, 0, limit)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}
