package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	v1 "github.com/PaulBabatuyi/surepay-gRPC/api/surepay/v1"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/auth"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/identity"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/normalize"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/session"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/thread"
	"go.mongodb.org/mongo-driver/v2/bson"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const (
	bufSize      = 1024 * 1024
	testPassword = "secret1"
)

// fakeAccounts keeps credential records in memory.
type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]*data.Account
}

func (f *fakeAccounts) CreateAccount(ctx context.Context, email, hash string) (*data.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = normalize.Email(email)
	for _, a := range f.byID {
		if a.Email == email {
			return nil, data.ErrDuplicate
		}
	}
	acc := &data.Account{ID: bson.NewObjectID(), Email: email, Password: hash, CreatedAt: time.Now()}
	f.byID[acc.ID.Hex()] = acc
	cp := *acc
	return &cp, nil
}

func (f *fakeAccounts) GetAccountByEmail(ctx context.Context, email string) (*data.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == normalize.Email(email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, data.ErrNotFound
}

func (f *fakeAccounts) GetAccountByID(ctx context.Context, uid string) (*data.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[uid]
	if !ok {
		return nil, data.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) MarkVerified(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[uid]
	if !ok {
		return data.ErrNotFound
	}
	a.EmailVerified = true
	return nil
}

func (f *fakeAccounts) TouchSignOut(ctx context.Context, uid string) error {
	return nil
}

func (f *fakeAccounts) uidFor(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.byID {
		if a.Email == normalize.Email(email) {
			return id
		}
	}
	return ""
}

// fakeProfiles keeps profile documents in memory.
type fakeProfiles struct {
	mu    sync.Mutex
	users map[string]*data.User
}

func (f *fakeProfiles) GetProfile(ctx context.Context, uid string) (*data.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return nil, data.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeProfiles) CreateProfile(ctx context.Context, u *data.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.UID] = &cp
	return nil
}

func (f *fakeProfiles) SetFlags(ctx context.Context, uid string, isAdmin, hasSeenGuide *bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return data.ErrNotFound
	}
	if isAdmin != nil {
		v := *isAdmin
		u.IsAdmin = &v
	}
	if hasSeenGuide != nil {
		v := *hasSeenGuide
		u.HasSeenGuide = &v
	}
	return nil
}

func (f *fakeProfiles) get(uid string) *data.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[uid]
}

// memRecords is an in-memory lifecycle store with the same conditional
// Approve and Delete as the Mongo stores.
type memRecords[T lifecycle.Document] struct {
	mu      sync.Mutex
	docs    []T
	inserts int
	setID   func(T, bson.ObjectID)
	status  func(T) *lifecycle.Status
}

func newMemBookings() *memRecords[*data.Booking] {
	return &memRecords[*data.Booking]{
		setID:  func(b *data.Booking, id bson.ObjectID) { b.ID = id },
		status: func(b *data.Booking) *lifecycle.Status { return &b.Status },
	}
}

func newMemRequests() *memRecords[*data.Request] {
	return &memRecords[*data.Request]{
		setID:  func(r *data.Request, id bson.ObjectID) { r.ID = id },
		status: func(r *data.Request) *lifecycle.Status { return &r.Status },
	}
}

func (m *memRecords[T]) Insert(ctx context.Context, doc T) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	m.setID(doc, bson.NewObjectID())
	m.docs = append(m.docs, doc)
	return doc.RecordID(), nil
}

func (m *memRecords[T]) List(ctx context.Context) ([]T, error) {
	return m.ListByOwner(ctx, "")
}

func (m *memRecords[T]) ListByOwner(ctx context.Context, owner string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []T{}
	for i := len(m.docs) - 1; i >= 0; i-- {
		if owner == "" || m.docs[i].OwnerID() == owner {
			out = append(out, m.docs[i])
		}
	}
	return out, nil
}

func (m *memRecords[T]) pending(id string) (int, error) {
	for i, d := range m.docs {
		if d.RecordID() != id {
			continue
		}
		if st := *m.status(d); st != lifecycle.Pending {
			return -1, fmt.Errorf("%w: status is %s", lifecycle.ErrTerminal, st)
		}
		return i, nil
	}
	return -1, lifecycle.ErrNotFound
}

func (m *memRecords[T]) Approve(ctx context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	i, err := m.pending(id)
	if err != nil {
		return zero, err
	}
	*m.status(m.docs[i]) = lifecycle.Approved
	return m.docs[i], nil
}

func (m *memRecords[T]) Delete(ctx context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	i, err := m.pending(id)
	if err != nil {
		return zero, err
	}
	doc := m.docs[i]
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return doc, nil
}

func (m *memRecords[T]) insertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}

// fakeMessages mirrors the Mongo thread query.
type fakeMessages struct {
	mu   sync.Mutex
	msgs []*data.Message
}

func (f *fakeMessages) SaveMessage(ctx context.Context, msg *data.Message) (*data.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := *msg
	saved.ID = bson.NewObjectID()
	f.msgs = append(f.msgs, &saved)
	return &saved, nil
}

func (f *fakeMessages) ThreadMessages(ctx context.Context, userID string) ([]*data.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in := func(id string) bool { return id == userID || id == data.AdminID }
	out := []*data.Message{}
	for _, m := range f.msgs {
		if in(m.SenderID) && in(m.RecipientID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeMessages) ActiveThreads(ctx context.Context, limit int64) ([]*data.ThreadSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := map[string]*data.Message{}
	for _, m := range f.msgs {
		user := m.SenderID
		if user == data.AdminID {
			user = m.RecipientID
		}
		latest[user] = m
	}
	out := []*data.ThreadSummary{}
	for user, m := range latest {
		out = append(out, &data.ThreadSummary{UserID: user, LastMessage: m.Message, LastMessageTime: m.Timestamp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageTime.After(out[j].LastMessageTime) })
	return out, nil
}

type fakeTransactions struct {
	byUser map[string][]*data.Transaction
}

func (f *fakeTransactions) ListByUser(ctx context.Context, userID string, limit int64) ([]*data.Transaction, error) {
	out := f.byUser[userID]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUploader struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeUploader) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeUploader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// captureMailer remembers the last verification link per address.
type captureMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (c *captureMailer) SendVerification(ctx context.Context, email, link string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[normalize.Email(email)] = link
	return nil
}

func (c *captureMailer) token(t *testing.T, email string) string {
	t.Helper()
	c.mu.Lock()
	link := c.links[normalize.Email(email)]
	c.mu.Unlock()
	u, err := url.Parse(link)
	if err != nil || link == "" {
		t.Fatalf("no verification link for %s (%q)", email, link)
	}
	return u.Query().Get("token")
}

// testEnv is a full server on a bufconn listener, backed by fakes.
type testEnv struct {
	client   *v1.SurePayServiceClient
	accounts *fakeAccounts
	profiles *fakeProfiles
	bookings *memRecords[*data.Booking]
	requests *memRecords[*data.Request]
	messages *fakeMessages
	txns     *fakeTransactions
	uploader *fakeUploader
	mailer   *captureMailer
	sessions *session.Registry

	grpcServer  *grpc.Server
	stopServing context.CancelFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		accounts: &fakeAccounts{byID: map[string]*data.Account{}},
		profiles: &fakeProfiles{users: map[string]*data.User{}},
		bookings: newMemBookings(),
		requests: newMemRequests(),
		messages: &fakeMessages{},
		txns:     &fakeTransactions{byUser: map[string][]*data.Transaction{}},
		uploader: &fakeUploader{url: "https://cdn.example.com/shot.jpg"},
		mailer:   &captureMailer{links: map[string]string{}},
	}

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	provider := identity.NewProvider(env.accounts, jwtMgr, env.mailer, "http://localhost/verify")
	env.sessions = session.NewRegistry(func() *session.Gate {
		return session.NewGate(provider, env.profiles, true, log)
	})
	syncer := thread.NewSyncer(env.messages, thread.NewHub(), log, nil)

	bookings := lifecycle.NewEngine[*data.Booking]("booking", env.bookings, log)
	requests := lifecycle.NewEngine[*data.Request]("request", env.requests, log)
	bookings.OnTransition(notifyOwner[*data.Booking](syncer, bookings.Kind()))
	requests.OnTransition(notifyOwner[*data.Request](syncer, requests.Kind()))

	denylist := auth.NewMemoryDenylist()
	serving, stopServing := context.WithCancel(context.Background())
	t.Cleanup(stopServing)
	env.stopServing = stopServing
	srv := newServer(serverDeps{
		Lifetime:     serving,
		Verifier:     provider,
		Sessions:     env.sessions,
		Tokens:       jwtMgr,
		Denylist:     denylist,
		Bookings:     bookings,
		Requests:     requests,
		Chat:         syncer,
		Uploader:     env.uploader,
		Transactions: env.txns,
		Log:          log,
	})

	limiter := middleware.NewLimiterStore(6000, 100, time.Minute)
	t.Cleanup(limiter.Stop)
	authn := &authenticator{tokens: jwtMgr, denylist: denylist, sessions: env.sessions}
	grpcServer, _ := newGRPCServer(srv, authn, limiter, log, nil)
	env.grpcServer = grpcServer

	lis := bufconn.Listen(bufSize)
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufnet: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	env.client = v1.NewSurePayServiceClient(conn)
	return env
}

// signup registers, verifies and logs in a user and returns its token and
// uid. Admin accounts get the flag set on their profile before login.
func (e *testEnv) signup(t *testing.T, email, username string, admin bool) (string, string) {
	t.Helper()
	ctx := context.Background()
	reg, err := e.client.Register(ctx, &v1.RegisterRequest{Email: email, Password: testPassword, Username: username})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	if !reg.Success {
		t.Fatalf("Register(%s) failed: %s", email, reg.Msg)
	}
	uid := e.accounts.uidFor(email)
	if err := e.accounts.MarkVerified(ctx, uid); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if admin {
		yes := true
		if err := e.profiles.SetFlags(ctx, uid, &yes, nil); err != nil {
			t.Fatalf("SetFlags: %v", err)
		}
	}
	login, err := e.client.Login(ctx, &v1.LoginRequest{Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("Login RPC failed: %v", err)
	}
	if !login.Success || login.Token == "" {
		t.Fatalf("Login(%s) failed: %s", email, login.Msg)
	}
	return login.Token, uid
}

func authed(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

var errUploadDown = errors.New("upload service unavailable")
