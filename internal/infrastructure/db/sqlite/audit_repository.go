package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type auditRow struct {
	Seq       int64     `db:"seq"`
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	ActorID   string    `db:"actor_id"`
	SubjectID string    `db:"subject_id"`
	Username  string    `db:"username"`
	Detail    string    `db:"detail"`
	Timestamp time.Time `db:"timestamp"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	const q = `INSERT INTO audit_events
		(id, type, actor_id, subject_id, username, detail, timestamp)
		VALUES
		(:id, :type, :actor_id, :subject_id, :username, :detail, :timestamp)`

	row := auditRow{
		ID:        event.ID,
		Type:      string(event.Type),
		ActorID:   event.ActorID,
		SubjectID: event.SubjectID,
		Username:  event.Username,
		Detail:    event.Detail,
		Timestamp: event.Timestamp.UTC(),
	}
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = -1
	}

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM audit_events ORDER BY seq DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	out := make([]domain.AuditEvent, len(rows))
	for i, row := range rows {
		out[i] = domain.AuditEvent{
			ID:        row.ID,
			Type:      domain.AuditType(row.Type),
			ActorID:   row.ActorID,
			SubjectID: row.SubjectID,
			Username:  row.Username,
			Detail:    row.Detail,
			Timestamp: row.Timestamp,
		}
	}
	return out, nil
}
