package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

const collectionClockEvents = "clock_events"

// ClockEventRepository implements ports.ClockEventRepository using MongoDB.
type ClockEventRepository struct {
	db *mongo.Database
}

// NewClockEventRepository creates a new ClockEventRepository.
func NewClockEventRepository(db *mongo.Database) ports.ClockEventRepository {
	return &ClockEventRepository{db: db}
}

// InsertEvent persists a clock transition to the clock_events audit collection.
func (r *ClockEventRepository) InsertEvent(ctx context.Context, event *domain.ClockEvent) error {
	doc := bson.M{
		"user_id":     event.UserID,
		"action":      string(event.Action),
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.RequestID != "" {
		doc["request_id"] = event.RequestID
	}

	if _, err := r.db.Collection(collectionClockEvents).InsertOne(ctx, doc); err != nil {
		return storageErr("insert clock event", err)
	}
	return nil
}
