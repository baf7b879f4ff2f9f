package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// record is implemented by *Booking and *Request.
type record interface {
	lifecycle.Document
	canonicalStatus()
}

// RecordsStore persists bookings or requests. Both collections share the
// same lifecycle fields (status, createdAt, userId).
type RecordsStore[T record] struct {
	// coll is the "bookings" or "requests" collection
	coll   *mongo.Collection
	newDoc func() T
}

// NewBookingsStore returns a RecordsStore over the bookings collection.
func NewBookingsStore(coll *mongo.Collection) *RecordsStore[*Booking] {
	return &RecordsStore[*Booking]{coll: coll, newDoc: func() *Booking { return new(Booking) }}
}

// NewRequestsStore returns a RecordsStore over the requests collection.
func NewRequestsStore(coll *mongo.Collection) *RecordsStore[*Request] {
	return &RecordsStore[*Request]{coll: coll, newDoc: func() *Request { return new(Request) }}
}

// Insert stores a prepared document and returns its generated id.
func (s *RecordsStore[T]) Insert(ctx context.Context, doc T) (string, error) {
	result, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id.Hex(), nil
}

// List returns all documents ordered by createdAt descending.
func (s *RecordsStore[T]) List(ctx context.Context) ([]T, error) {
	return s.find(ctx, bson.M{})
}

// ListByOwner returns the documents of one user ordered by createdAt descending.
func (s *RecordsStore[T]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	return s.find(ctx, bson.M{"userId": ownerID})
}

func (s *RecordsStore[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	for cursor.Next(ctx) {
		doc := s.newDoc()
		if err := cursor.Decode(doc); err != nil {
			return nil, err
		}
		doc.canonicalStatus()
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// pendingFilter matches the id only while the document is still Pending.
// A document without a status field counts as Pending.
func pendingFilter(id bson.ObjectID) bson.M {
	return bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"status": bson.M{"$exists": false}},
			bson.M{"status": bson.M{"$in": lifecycle.PendingSpellings()}},
		},
	}
}

// Approve sets status=Approved on a Pending document. Only the status field
// is written.
func (s *RecordsStore[T]) Approve(ctx context.Context, id string) (T, error) {
	var zero T
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return zero, lifecycle.ErrNotFound
	}

	doc := s.newDoc()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": lifecycle.Approved}}
	err = s.coll.FindOneAndUpdate(ctx, pendingFilter(oid), update, opts).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return zero, s.missOrTerminal(ctx, oid)
	}
	if err != nil {
		return zero, err
	}
	doc.canonicalStatus()
	return doc, nil
}

// Delete removes a Pending document and returns it.
func (s *RecordsStore[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return zero, lifecycle.ErrNotFound
	}

	doc := s.newDoc()
	err = s.coll.FindOneAndDelete(ctx, pendingFilter(oid)).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return zero, s.missOrTerminal(ctx, oid)
	}
	if err != nil {
		return zero, err
	}
	doc.canonicalStatus()
	return doc, nil
}

// missOrTerminal tells apart "no such id" from "not Pending any more" after a
// conditional write matched nothing.
func (s *RecordsStore[T]) missOrTerminal(ctx context.Context, oid bson.ObjectID) error {
	var current struct {
		Status string `bson:"status"`
	}
	err := s.coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"status": 1})).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return lifecycle.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: status is %s", lifecycle.ErrTerminal, current.Status)
}
