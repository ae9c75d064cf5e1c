package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepository)(nil)

// auditDoc documento BSON de una entrada de auditoría.
type auditDoc struct {
	ID         string    `bson:"_id"`
	Actor      string    `bson:"actor"`
	ActorName  string    `bson:"actorName"`
	Action     string    `bson:"action"`
	EntityKind string    `bson:"entityKind"`
	EntityID   string    `bson:"entityId"`
	Detail     string    `bson:"detail"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// AuditRepository adaptador MongoDB para el historial de auditoría.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository construye el repositorio.
func NewAuditRepository(client *Client) *AuditRepository {
	return &AuditRepository{coll: client.Collection(collAudit)}
}

func (r *AuditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	doc := auditDoc{
		ID:         entry.ID,
		Actor:      entry.Actor,
		ActorName:  entry.ActorName,
		Action:     entry.Action,
		EntityKind: entry.EntityKind,
		EntityID:   entry.EntityID,
		Detail:     entry.Detail,
		CreatedAt:  entry.CreatedAt,
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *AuditRepository) List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error) {
	query := bson.M{}
	if filter.EntityKind != "" {
		query["entityKind"] = filter.EntityKind
	}
	if filter.EntityID != "" {
		query["entityId"] = filter.EntityID
	}
	if filter.Actor != "" {
		query["actor"] = filter.Actor
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*entity.AuditEntry
	for cur.Next(ctx) {
		var doc auditDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &entity.AuditEntry{
			ID:         doc.ID,
			Actor:      doc.Actor,
			ActorName:  doc.ActorName,
			Action:     doc.Action,
			EntityKind: doc.EntityKind,
			EntityID:   doc.EntityID,
			Detail:     doc.Detail,
			CreatedAt:  doc.CreatedAt,
		})
	}
	return out, cur.Err()
}
