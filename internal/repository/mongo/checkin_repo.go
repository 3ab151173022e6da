package mongo

import (
	"context"

	"github.com/dom/mama-respira/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type checkinRepository struct {
	coll *mongo.Collection
}

func NewCheckinRepository(db *mongo.Database) *checkinRepository {
	return &checkinRepository{coll: db.Collection(checkinsCollection)}
}

func (r *checkinRepository) Create(ctx context.Context, c *domain.Checkin) error {
	_, err := r.coll.InsertOne(ctx, c)
	return translate(err)
}

func (r *checkinRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Checkin, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, translate(err)
	}

	list := make([]*domain.Checkin, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, translate(err)
	}
	return list, nil
}
