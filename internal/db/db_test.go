package db

import (
	"context"
	"os"
	"testing"
)

// These tests are integration tests and require a running MongoDB instance.
// Set MONGODB_URI in the environment before running them.

func TestNewAndCreateIndexes(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := New(ctx, uri, "surepay_test")
	if err != nil {
		t.Fatalf("failed to connect to DB: %v", err)
	}
	defer func() {
		_ = c.db.Drop(context.Background())
		_ = c.Close(context.Background())
	}()

	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}
	// creating the same indexes twice is a no-op
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("second CreateIndexes failed: %v", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}
