package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/timeclock/internal/core/domain"
)

const collectionShifts = "shift_records"

// ShiftLedger is the append-only shift collection. Documents are never
// updated or deleted.
type ShiftLedger struct {
	col *mongo.Collection
}

func NewShiftLedger(db *mongo.Database) *ShiftLedger {
	return &ShiftLedger{col: db.Collection(collectionShifts)}
}

type shiftDoc struct {
	ID              string    `bson:"_id"`
	UserID          string    `bson:"user_id"`
	Start           time.Time `bson:"start"`
	DurationSeconds int64     `bson:"duration_seconds"`
	CreatedAt       time.Time `bson:"created_at"`
}

// Append inserts a completed shift. A second record for the same user and
// start instant is an integrity fault.
func (l *ShiftLedger) Append(ctx context.Context, r *domain.ShiftRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := l.col.InsertOne(ctx, shiftDoc{
		ID:              r.ID,
		UserID:          r.UserID,
		Start:           r.Start.UTC(),
		DurationSeconds: r.DurationSeconds,
		CreatedAt:       r.CreatedAt.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: shift for user %s starting %s already recorded",
				domain.ErrDataIntegrity, r.UserID, r.Start.Format(time.RFC3339))
		}
		return storageErr("insert shift", err)
	}
	return nil
}

// QueryByDateRange returns the user's shifts starting in [from, to).
func (l *ShiftLedger) QueryByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.ShiftRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"user_id": userID,
		"start":   bson.M{"$gte": from.UTC(), "$lt": to.UTC()},
	}
	cur, err := l.col.Find(ctx, filter)
	if err != nil {
		return nil, storageErr("find shifts", err)
	}
	defer cur.Close(ctx)

	var docs []shiftDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr("decode shifts", err)
	}

	records := make([]domain.ShiftRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, domain.ShiftRecord{
			ID:              d.ID,
			UserID:          d.UserID,
			Start:           d.Start.UTC(),
			DurationSeconds: d.DurationSeconds,
			CreatedAt:       d.CreatedAt.UTC(),
		})
	}
	return records, nil
}
