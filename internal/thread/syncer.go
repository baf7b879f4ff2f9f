package thread

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/metrics"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/normalize"
)

// ErrEmptyMessage is returned for a message with neither text nor image.
var ErrEmptyMessage = errors.New("message must have text or an image")

// Store is the message persistence the syncer needs.
type Store interface {
	SaveMessage(ctx context.Context, msg *data.Message) (*data.Message, error)
	// ThreadMessages returns the user's thread with the admin, oldest first.
	ThreadMessages(ctx context.Context, userID string) ([]*data.Message, error)
	ActiveThreads(ctx context.Context, limit int64) ([]*data.ThreadSummary, error)
}

// Snapshot is the full ordered content of a thread at one point in time.
type Snapshot struct {
	UserID   string
	Messages []*data.Message
}

// Syncer appends messages to threads and serves live snapshots of them.
type Syncer struct {
	store   Store
	broker  Broker
	log     *slog.Logger
	metrics *metrics.Metrics
	clock   *clock
}

// NewSyncer wires a syncer. m may be nil.
func NewSyncer(store Store, broker Broker, log *slog.Logger, m *metrics.Metrics) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		store:   store,
		broker:  broker,
		log:     log,
		metrics: m,
		clock:   &clock{now: time.Now},
	}
}

// Append validates and stores a message, then notifies the thread's
// subscribers. from and to must be one user id and data.AdminID.
func (s *Syncer) Append(ctx context.Context, from, to, text, imageURL string) (*data.Message, error) {
	if normalize.Blank(text) && normalize.Blank(imageURL) {
		return nil, ErrEmptyMessage
	}
	user, err := userOf(from, to)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.SaveMessage(ctx, &data.Message{
		SenderID:    strings.TrimSpace(from),
		RecipientID: strings.TrimSpace(to),
		Message:     normalize.Text(text),
		ImageURL:    normalize.Text(imageURL),
		Timestamp:   s.clock.Next(),
	})
	if err != nil {
		return nil, err
	}

	role := "user"
	if saved.SenderID == data.AdminID {
		role = "admin"
	}
	s.metrics.ObserveMessage(role)

	// the message is stored either way; subscribers that miss this signal
	// catch up on the next change of the thread
	if err := s.broker.Publish(ctx, UserKey(user)); err != nil {
		s.log.Warn("thread notify failed", "user", user, "err", err)
	}
	return saved, nil
}

// Send is Append reduced to success or failure. Empty messages and store
// errors both return false; store errors are logged.
func (s *Syncer) Send(ctx context.Context, from, to, text, imageURL string) bool {
	if _, err := s.Append(ctx, from, to, text, imageURL); err != nil {
		if !errors.Is(err, ErrEmptyMessage) {
			s.log.Error("send message failed", "from", from, "to", to, "err", err)
		}
		return false
	}
	return true
}

// ActiveThreads lists users with a thread, most recent first.
func (s *Syncer) ActiveThreads(ctx context.Context, limit int64) ([]*data.ThreadSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ActiveThreads(ctx, limit)
}

// Subscription is a live view of one thread. Snapshots arrive on C, which is
// closed when the subscription ends.
type Subscription struct {
	C <-chan Snapshot

	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel detaches the subscription and waits until its goroutine has
// stopped, so no snapshot is delivered after Cancel returns. Safe to call
// more than once.
func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Subscribe opens a live view of userID's thread with the admin. The
// current snapshot is delivered first, then a fresh one after each change.
// Every snapshot is re-read from the store, never patched locally, so
// concurrent writers on both sides of the thread cannot desynchronize it.
// The subscription ends when ctx is done or Cancel is called.
func (s *Syncer) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || userID == data.AdminID {
		return nil, ErrInvalidPair
	}

	// listen before the first read so a write between the two is not lost
	signals, unlisten := s.broker.Listen(UserKey(userID))
	first, err := s.store.ThreadMessages(ctx, userID)
	if err != nil {
		unlisten()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot)
	sub := &Subscription{C: out, cancel: cancel, done: make(chan struct{})}

	s.metrics.SubscriptionOpened()
	go func() {
		defer close(sub.done)
		defer close(out)
		defer unlisten()
		defer s.metrics.SubscriptionClosed()
		s.run(ctx, userID, first, signals, out)
	}()
	return sub, nil
}

func (s *Syncer) run(ctx context.Context, userID string, msgs []*data.Message, signals <-chan struct{}, out chan<- Snapshot) {
	undelivered := true
	for {
		if undelivered {
			select {
			case out <- Snapshot{UserID: userID, Messages: msgs}:
				undelivered = false
				continue
			case <-ctx.Done():
				return
			case <-signals:
				// a newer state exists; re-read before delivering
			}
		} else {
			select {
			case <-ctx.Done():
				return
			case <-signals:
			}
		}

		fresh, err := s.store.ThreadMessages(ctx, userID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("thread reload failed", "user", userID, "err", err)
			continue
		}
		msgs, undelivered = fresh, true
	}
}

// clock hands out strictly increasing millisecond timestamps (the precision
// a BSON datetime keeps) so messages sent one after the other through this
// process never tie.
type clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func (c *clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}
