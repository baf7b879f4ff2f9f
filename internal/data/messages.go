package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	// coll is reference to "messages" collection in MongoDB
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// SaveMessage inserts a message document and returns the saved record.
// Messages are append-only: nothing in this store updates or deletes them.
func (m *MessagesStore) SaveMessage(ctx context.Context, msg *Message) (*Message, error) {
	result, err := m.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	saved := *msg
	saved.ID = result.InsertedID.(bson.ObjectID)
	return &saved, nil
}

// ThreadMessages returns every message between userID and the admin,
// ordered oldest first. Messages sharing a timestamp fall back to insertion
// order through the ObjectID.
func (m *MessagesStore) ThreadMessages(ctx context.Context, userID string) ([]*Message, error) {
	participants := bson.A{userID, AdminID}
	filter := bson.M{
		"senderId":    bson.M{"$in": participants},
		"recipientId": bson.M{"$in": participants},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []*Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ActiveThreads lists the users who have written to the admin, most recent
// conversation first, with their username and latest message.
func (m *MessagesStore) ActiveThreads(ctx context.Context, limit int64) ([]*ThreadSummary, error) {
	pipeline := mongo.Pipeline{
		// only messages addressed to the admin identify an active user
		bson.D{{Key: "$match", Value: bson.D{{Key: "recipientId", Value: AdminID}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$senderId"},
			{Key: "last_message", Value: bson.D{{Key: "$first", Value: "$message"}}},
			{Key: "last_message_at", Value: bson.D{{Key: "$first", Value: "$timestamp"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "last_message_at", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "profile"},
		}}},
	}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		UserID        string    `bson:"_id"`
		LastMessage   string    `bson:"last_message"`
		LastMessageAt time.Time `bson:"last_message_at"`
		Profile       []struct {
			Username string `bson:"username"`
		} `bson:"profile"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	threads := make([]*ThreadSummary, 0, len(results))
	for _, r := range results {
		username := "Unknown"
		if len(r.Profile) > 0 && r.Profile[0].Username != "" {
			username = r.Profile[0].Username
		}
		threads = append(threads, &ThreadSummary{
			UserID:          r.UserID,
			Username:        username,
			LastMessage:     r.LastMessage,
			LastMessageTime: r.LastMessageAt,
		})
	}
	return threads, nil
}
