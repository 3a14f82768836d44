package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/timeclock/internal/core/domain"
)

const collectionClockStatus = "clock_status"

// ClockStatusRepository stores one document per user keyed by user ID. Saves
// are conditional on the version field.
type ClockStatusRepository struct {
	col *mongo.Collection
}

func NewClockStatusRepository(db *mongo.Database) *ClockStatusRepository {
	return &ClockStatusRepository{col: db.Collection(collectionClockStatus)}
}

type clockStatusDoc struct {
	UserID     string     `bson:"_id"`
	Active     bool       `bson:"active"`
	ClockedIn  *time.Time `bson:"clocked_in"`
	ClockedOut *time.Time `bson:"clocked_out"`
	Version    int64      `bson:"version"`
	UpdatedAt  time.Time  `bson:"updated_at"`
}

func (r *ClockStatusRepository) Create(ctx context.Context, s *domain.ClockStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, toStatusDoc(s))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProfileExists
		}
		return storageErr("insert clock status", err)
	}
	return nil
}

func (r *ClockStatusRepository) Get(ctx context.Context, userID string) (*domain.ClockStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc clockStatusDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storageErr("find clock status", err)
	}
	return doc.toDomain(), nil
}

// Save replaces the mutable fields only while the stored version equals
// expectedVersion.
func (r *ClockStatusRepository) Save(ctx context.Context, s *domain.ClockStatus, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": s.UserID, "version": expectedVersion}
	update := bson.M{"$set": bson.M{
		"active":      s.Active,
		"clocked_in":  s.ClockedIn,
		"clocked_out": s.ClockedOut,
		"updated_at":  s.UpdatedAt.UTC(),
		"version":     expectedVersion + 1,
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return storageErr("update clock status", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	return nil
}

func toStatusDoc(s *domain.ClockStatus) clockStatusDoc {
	return clockStatusDoc{
		UserID:     s.UserID,
		Active:     s.Active,
		ClockedIn:  s.ClockedIn,
		ClockedOut: s.ClockedOut,
		Version:    s.Version,
		UpdatedAt:  s.UpdatedAt.UTC(),
	}
}

func (d clockStatusDoc) toDomain() *domain.ClockStatus {
	return &domain.ClockStatus{
		UserID:     d.UserID,
		Active:     d.Active,
		ClockedIn:  utcPtr(d.ClockedIn),
		ClockedOut: utcPtr(d.ClockedOut),
		Version:    d.Version,
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
