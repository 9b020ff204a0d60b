package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

const collectionAuditEvents = "audit_events"

// AuditRepository stores the audit trail in its own collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuditEvents)}
}

type auditDoc struct {
	Seq         primitive.ObjectID `bson:"_id"`
	ID          string             `bson:"event_id"`
	Type        string             `bson:"type"`
	ActorID     string             `bson:"actor_id,omitempty"`
	SubjectID   string             `bson:"subject_id,omitempty"`
	Username    string             `bson:"username,omitempty"`
	Detail      string             `bson:"detail,omitempty"`
	Timestamp   time.Time          `bson:"timestamp"`
	ProcessedAt time.Time          `bson:"processed_at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDoc{
		Seq:         primitive.NewObjectID(),
		ID:          event.ID,
		Type:        string(event.Type),
		ActorID:     event.ActorID,
		SubjectID:   event.SubjectID,
		Username:    event.Username,
		Detail:      event.Detail,
		Timestamp:   event.Timestamp.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	out := make([]domain.AuditEvent, len(docs))
	for i, d := range docs {
		out[i] = domain.AuditEvent{
			ID:        d.ID,
			Type:      domain.AuditType(d.Type),
			ActorID:   d.ActorID,
			SubjectID: d.SubjectID,
			Username:  d.Username,
			Detail:    d.Detail,
			Timestamp: d.Timestamp.UTC(),
		}
	}
	return out, nil
}
