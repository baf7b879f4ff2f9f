// Package db manages MongoDB connections and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "surepay"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (safe for concurrent use)
	client *mongo.Client

	// db holds users, accounts, bookings, requests, messages and transactions
	db *mongo.Database
}

// New connects to MongoDB and returns a Client.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	if database == "" {
		database = DefaultDatabase
	}
	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// UsersCollection returns the users (profiles) collection.
func (c *Client) UsersCollection() *mongo.Collection { return c.db.Collection("users") }

// AccountsCollection returns the identity accounts collection.
func (c *Client) AccountsCollection() *mongo.Collection { return c.db.Collection("accounts") }

// BookingsCollection returns the bookings collection.
func (c *Client) BookingsCollection() *mongo.Collection { return c.db.Collection("bookings") }

// RequestsCollection returns the payment requests collection.
func (c *Client) RequestsCollection() *mongo.Collection { return c.db.Collection("requests") }

// MessagesCollection returns the messages collection.
func (c *Client) MessagesCollection() *mongo.Collection { return c.db.Collection("messages") }

// TransactionsCollection returns the transactions collection.
func (c *Client) TransactionsCollection() *mongo.Collection {
	return c.db.Collection("transactions")
}

// Ping checks the primary is reachable; used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores' queries rely on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// unique email; prevents duplicate registration
	_, err := c.AccountsCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create accounts index: %w", err)
	}

	// listAll sorts by createdAt; the owner listing filters by userId first
	recordIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	for name, coll := range map[string]*mongo.Collection{
		"bookings": c.BookingsCollection(),
		"requests": c.RequestsCollection(),
	} {
		if _, err := coll.Indexes().CreateMany(ctx, recordIndexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}

	messageIndexes := []mongo.IndexModel{
		{
			// thread query: senderId/recipientId $in filters, ascending timestamp
			Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "recipientId", Value: 1}, {Key: "timestamp", Value: 1}},
		},
		{
			// admin thread list: messages to admin, newest first
			Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}
	if _, err := c.MessagesCollection().Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	_, err = c.TransactionsCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transactions index: %w", err)
	}
	return nil
}
