package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

const securityEventsCollection = "security_events"

// SecurityEventRepository implements ports.SecurityEventRepository using MongoDB.
type SecurityEventRepository struct {
	db *mongo.Database
}

var _ ports.SecurityEventRepository = (*SecurityEventRepository)(nil)

func NewSecurityEventRepository(db *mongo.Database) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// EnsureIndexes creates the lookup index by user and time, and a TTL index
// so the trail does not grow without bound. A zero retention keeps events forever.
func (r *SecurityEventRepository) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}
	if retention > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: "recorded_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention / time.Second)),
		})
	}
	if _, err := r.collection().Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create security event indexes: %w", err)
	}
	return nil
}

// InsertEvent persists one audit entry. Re-inserting the same event id is not an error.
func (r *SecurityEventRepository) InsertEvent(ctx context.Context, event *domain.SecurityEvent) error {
	_, err := r.collection().InsertOne(ctx, toDocument(event, time.Now().UTC()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}

// ListByUsername returns the newest events of username, at most limit.
func (r *SecurityEventRepository) ListByUsername(ctx context.Context, username string, limit int64) ([]domain.SecurityEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := r.collection().Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("find security events: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.SecurityEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode security events: %w", err)
	}
	return out, nil
}

func (r *SecurityEventRepository) collection() *mongo.Collection {
	return r.db.Collection(securityEventsCollection)
}

func toDocument(event *domain.SecurityEvent, recordedAt time.Time) bson.M {
	doc := bson.M{
		"_id":         event.ID,
		"type":        string(event.Type),
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": recordedAt,
	}
	for key, val := range map[string]string{
		"username": event.Username,
		"role":     string(event.Role),
		"path":     event.Path,
		"trigger":  event.Trigger,
		"reason":   event.Reason,
	} {
		if val != "" {
			doc[key] = val
		}
	}
	return doc
}
