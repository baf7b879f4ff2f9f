package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/metrics"
)

// countTransitions counts successful transitions by kind and target status.
func countTransitions[T lifecycle.Document](m *metrics.Metrics, kind string) lifecycle.TransitionHook[T] {
	return func(_ context.Context, _ T, to lifecycle.Status) error {
		m.ObserveTransition(kind, string(to))
		return nil
	}
}

// notifyOwner posts the outcome to the owner's admin thread. The record is
// already transitioned when this runs; a failed post is only logged.
func notifyOwner[T lifecycle.Document](chat Chat, kind string) lifecycle.TransitionHook[T] {
	return func(ctx context.Context, doc T, to lifecycle.Status) error {
		owner := doc.OwnerID()
		if owner == "" || owner == data.AdminID {
			return nil
		}
		text := fmt.Sprintf("Your %s has been %s.", kind, strings.ToLower(string(to)))
		_, err := chat.Append(ctx, data.AdminID, owner, text, "")
		return err
	}
}
