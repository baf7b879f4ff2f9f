package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TransactionsStore reads the transactions collection. Transactions are
// written by the payment back office; this service only displays them.
type TransactionsStore struct {
	coll *mongo.Collection
}

// NewTransactionsStore returns a TransactionsStore using given collection.
func NewTransactionsStore(coll *mongo.Collection) *TransactionsStore {
	return &TransactionsStore{coll: coll}
}

// ListByUser returns a user's transactions, newest first.
func (t *TransactionsStore) ListByUser(ctx context.Context, userID string, limit int64) ([]*Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)

	cursor, err := t.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	txs := []*Transaction{}
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
