// Package middleware holds the gRPC interceptors shared by every RPC:
// rate limiting, request logging and metrics.
package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/normalize"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// LimiterStore keeps one token bucket per key and forgets keys idle for
// longer than idleTTL.
type LimiterStore struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	clients map[string]*clientEntry
	stopCh  chan struct{}
	stopped sync.Once
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore allows limitPerMinute events per key with the given
// burst, sweeping idle keys every cleanupInterval.
func NewLimiterStore(limitPerMinute int, burst int, cleanupInterval time.Duration) *LimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	s := &LimiterStore{
		limit:   rate.Every(time.Minute / time.Duration(limitPerMinute)),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		clients: map[string]*clientEntry{},
		stopCh:  make(chan struct{}),
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *LimiterStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *LimiterStore) sweep(now time.Time) {
	cutoff := now.Add(-s.idleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.clients {
		if v.lastSeen.Before(cutoff) {
			delete(s.clients, k)
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call twice.
func (s *LimiterStore) Stop() {
	s.stopped.Do(func() { close(s.stopCh) })
}

// Allow reports whether an event for key is permitted now.
func (s *LimiterStore) Allow(key string) bool {
	s.mu.Lock()
	e, ok := s.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = e
	}
	e.lastSeen = time.Now()
	s.mu.Unlock()
	return e.limiter.Allow()
}

// Len is the number of tracked keys.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimitUnaryInterceptor limits the listed methods. Requests carrying an
// email are keyed by the normalized address so one account cannot be
// hammered from many addresses; others fall back to the peer address.
func RateLimitUnaryInterceptor(store *LimiterStore, limitedMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !limitedMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		if !store.Allow(limitKey(ctx, req)) {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

func limitKey(ctx context.Context, req interface{}) string {
	type emailGetter interface{ GetEmail() string }
	if eg, ok := req.(emailGetter); ok {
		if e := normalize.Email(eg.GetEmail()); e != "" {
			return "email:" + e
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return "peer:" + p.Addr.String()
	}
	return "unknown"
}
