package mongo

import (
	"context"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type bitacoraRepository struct {
	coll *mongo.Collection
}

func NewBitacoraRepository(db *mongo.Database) *bitacoraRepository {
	return &bitacoraRepository{coll: db.Collection(bitacorasCollection)}
}

func (r *bitacoraRepository) Create(ctx context.Context, b *domain.Bitacora) error {
	_, err := r.coll.InsertOne(ctx, b)
	return translate(err)
}

func (r *bitacoraRepository) Update(ctx context.Context, b *domain.Bitacora) error {
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "id", Value: b.ID}}, b)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bitacoraRepository) GetByID(ctx context.Context, id string) (*domain.Bitacora, error) {
	var b domain.Bitacora
	if err := r.coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&b); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bitacoraRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*domain.Bitacora, error) {
	var b domain.Bitacora
	filter := bson.D{{Key: "user_id", Value: userID}, {Key: "date", Value: date}}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&b); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bitacoraRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Bitacora, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, translate(err)
	}

	list := make([]*domain.Bitacora, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *bitacoraRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "user_id", Value: userID}})
	return n, translate(err)
}
