package mongo

import (
	"context"

	"github.com/dom/mama-respira/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Threads are ordered by creation time, falling back to the ObjectID the
// driver assigns on insert, which grows with insertion order.
var (
	oldestFirst = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
)

type messageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *messageRepository {
	return &messageRepository{coll: db.Collection(messagesCollection)}
}

func thread(a, b string) bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "sender_id", Value: a}, {Key: "receiver_id", Value: b}},
		bson.D{{Key: "sender_id", Value: b}, {Key: "receiver_id", Value: a}},
	}}}
}

func unreadFilter(senderID, receiverID string) bson.D {
	return bson.D{
		{Key: "sender_id", Value: senderID},
		{Key: "receiver_id", Value: receiverID},
		{Key: "read", Value: false},
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.DirectMessage) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return translate(err)
}

func (r *messageRepository) ListBetween(ctx context.Context, a, b string, limit int) ([]*domain.DirectMessage, error) {
	opts := options.Find().SetSort(oldestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, thread(a, b), opts)
	if err != nil {
		return nil, translate(err)
	}

	msgs := make([]*domain.DirectMessage, 0)
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, translate(err)
	}
	return msgs, nil
}

func (r *messageRepository) LatestBetween(ctx context.Context, a, b string) (*domain.DirectMessage, error) {
	var msg domain.DirectMessage
	err := r.coll.FindOne(ctx, thread(a, b), options.FindOne().SetSort(newestFirst)).Decode(&msg)
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		unreadFilter(senderID, receiverID),
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}}}},
	)
	if err != nil {
		return 0, translate(err)
	}
	return res.ModifiedCount, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{
		{Key: "receiver_id", Value: receiverID},
		{Key: "read", Value: false},
	})
	return n, translate(err)
}

func (r *messageRepository) CountUnreadFrom(ctx context.Context, senderID, receiverID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, unreadFilter(senderID, receiverID))
	return n, translate(err)
}
