package lifecycle_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
	"github.com/PaulBabatuyi/surepay-gRPC/internal/lifecycle"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeBookings keeps bookings in memory with the same conditional semantics
// as the Mongo store.
type fakeBookings struct {
	mu      sync.Mutex
	docs    map[string]*data.Booking
	inserts int
	failAll error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{docs: map[string]*data.Booking{}}
}

func (f *fakeBookings) Insert(ctx context.Context, b *data.Booking) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return "", f.failAll
	}
	f.inserts++
	b.ID = bson.NewObjectID()
	cp := *b
	f.docs[b.ID.Hex()] = &cp
	return b.ID.Hex(), nil
}

func (f *fakeBookings) List(ctx context.Context) ([]*data.Booking, error) {
	return f.ListByOwner(ctx, "")
}

func (f *fakeBookings) ListByOwner(ctx context.Context, owner string) ([]*data.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := []*data.Booking{}
	for _, d := range f.docs {
		if owner == "" || d.UserID == owner {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBookings) pending(id string) (*data.Booking, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	if d.Status != lifecycle.Pending {
		return nil, fmt.Errorf("%w: status is %s", lifecycle.ErrTerminal, d.Status)
	}
	return d, nil
}

func (f *fakeBookings) Approve(ctx context.Context, id string) (*data.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.pending(id)
	if err != nil {
		return nil, err
	}
	d.Status = lifecycle.Approved
	cp := *d
	return &cp, nil
}

func (f *fakeBookings) Delete(ctx context.Context, id string) (*data.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.pending(id)
	if err != nil {
		return nil, err
	}
	delete(f.docs, id)
	return d, nil
}

func anaBooking() *data.Booking {
	return &data.Booking{
		UserID:          "uid-ana",
		FirstName:       "Ana",
		LastName:        "Lee",
		Sex:             "Female",
		PaymentType:     "SAT",
		SocialMediaLink: "t.me/ana",
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]lifecycle.Status{
		"":          lifecycle.Pending,
		"pending":   lifecycle.Pending,
		"Approved":  lifecycle.Approved,
		"approved":  lifecycle.Approved,
		"Accepted":  lifecycle.Approved,
		"accepted":  lifecycle.Approved,
		"Declined":  lifecycle.Declined,
		"declined":  lifecycle.Declined,
		"Cancelled": lifecycle.Declined,
		" canceled": lifecycle.Declined,
	}
	for in, want := range cases {
		got, err := lifecycle.ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := lifecycle.ParseStatus("shipped"); !errors.Is(err, lifecycle.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCreateStoresPending(t *testing.T) {
	store := newFakeBookings()
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)

	res := e.Create(context.Background(), anaBooking())
	if !res.Success || res.ID == "" {
		t.Fatalf("Create failed: %+v", res)
	}
	got := store.docs[res.ID]
	if got.Status != lifecycle.Pending {
		t.Fatalf("expected Pending, got %q", got.Status)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be stamped")
	}
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	store := newFakeBookings()
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)

	b := anaBooking()
	b.LastName = "   "
	b.SocialMediaLink = ""
	res := e.Create(context.Background(), b)
	if res.Success {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(res.Msg, "lastName") || !strings.Contains(res.Msg, "socialMediaLink") {
		t.Fatalf("message should name the missing fields: %q", res.Msg)
	}
	if store.inserts != 0 {
		t.Fatalf("validation failure must not reach the store, got %d inserts", store.inserts)
	}

	r := &data.Request{UserID: "u", FirstName: "Ana", LastName: "Lee"}
	reqEngine := lifecycle.NewEngine[*data.Request]("request", nil, nil)
	if res := reqEngine.Create(context.Background(), r); res.Success || !strings.Contains(res.Msg, "paymentType") {
		t.Fatalf("request without paymentType should fail validation: %+v", res)
	}
}

func TestValidateDoesNotStore(t *testing.T) {
	store := newFakeBookings()
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)

	if res := e.Validate(anaBooking()); !res.Success {
		t.Fatalf("valid booking rejected: %+v", res)
	}
	b := anaBooking()
	b.FirstName = ""
	if res := e.Validate(b); res.Success || !strings.Contains(res.Msg, "firstName") {
		t.Fatalf("Validate = %+v", res)
	}
	if store.inserts != 0 {
		t.Fatal("Validate must not write")
	}
}

func TestCreateStoreErrorIsStructured(t *testing.T) {
	store := newFakeBookings()
	store.failAll = errors.New("permission denied")
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)

	res := e.Create(context.Background(), anaBooking())
	if res.Success || !strings.Contains(res.Msg, "permission denied") {
		t.Fatalf("expected structured failure, got %+v", res)
	}

	list := e.ListAll(context.Background())
	if list.Success || list.Records == nil || len(list.Records) != 0 || list.Msg == "" {
		t.Fatalf("expected empty listing with message, got %+v", list)
	}
}

func TestDeclineDeletes(t *testing.T) {
	ctx := context.Background()
	store := newFakeBookings()
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)

	created := e.Create(ctx, anaBooking())
	other := e.Create(ctx, anaBooking())

	res := e.Transition(ctx, created.ID, "Declined")
	if !res.Success {
		t.Fatalf("decline failed: %+v", res)
	}

	list := e.ListAll(ctx)
	for _, b := range list.Records {
		if b.RecordID() == created.ID {
			t.Fatalf("declined booking %s still listed", created.ID)
		}
	}
	if len(list.Records) != 1 || list.Records[0].RecordID() != other.ID {
		t.Fatalf("expected only the other booking, got %d records", len(list.Records))
	}

	for _, to := range []string{"Approved", "Declined"} {
		if again := e.Transition(ctx, created.ID, to); again.Success {
			t.Fatalf("second transition to %s should fail", to)
		}
	}
}

func TestApprovePreservesOtherFields(t *testing.T) {
	ctx := context.Background()
	store := newFakeBookings()
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)

	created := e.Create(ctx, anaBooking())
	before := *store.docs[created.ID]

	if res := e.Transition(ctx, created.ID, "accepted"); !res.Success {
		t.Fatalf("approve failed: %+v", res)
	}
	after := *store.docs[created.ID]
	if after.Status != lifecycle.Approved {
		t.Fatalf("expected Approved, got %q", after.Status)
	}
	after.Status = before.Status
	if after != before {
		t.Fatalf("approve changed more than status:\nbefore %+v\nafter  %+v", before, after)
	}

	if res := e.Transition(ctx, created.ID, "Declined"); res.Success {
		t.Fatal("decline out of Approved must be rejected")
	}
	if _, ok := store.docs[created.ID]; !ok {
		t.Fatal("approved booking must be retained")
	}
}

func TestTransitionRejectsPendingAndUnknownTargets(t *testing.T) {
	ctx := context.Background()
	store := newFakeBookings()
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)
	created := e.Create(ctx, anaBooking())

	for _, to := range []string{"Pending", "", "shipped"} {
		if res := e.Transition(ctx, created.ID, to); res.Success {
			t.Fatalf("transition to %q should be rejected", to)
		}
	}
	if res := e.Transition(ctx, "does-not-exist", "Approved"); res.Success {
		t.Fatal("transition of unknown id should fail")
	}
}

func TestTransitionHookRunsAfterSuccessOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakeBookings()
	e := lifecycle.NewEngine[*data.Booking]("booking", store, nil)

	var seen []lifecycle.Status
	e.OnTransition(func(ctx context.Context, b *data.Booking, to lifecycle.Status) error {
		if b.UserID != "uid-ana" {
			t.Errorf("hook got owner %q", b.UserID)
		}
		seen = append(seen, to)
		return errors.New("notify failed")
	})

	created := e.Create(ctx, anaBooking())
	if res := e.Transition(ctx, created.ID, "Declined"); !res.Success {
		t.Fatalf("a failing hook must not fail the transition: %+v", res)
	}
	_ = e.Transition(ctx, created.ID, "Declined")
	if len(seen) != 1 || seen[0] != lifecycle.Declined {
		t.Fatalf("hook calls = %v", seen)
	}
}

// Submit booking for Ana, admin declines it, listAll no longer has it.
func TestBookingScenarioSubmitThenDecline(t *testing.T) {
	ctx := context.Background()
	e := lifecycle.NewEngine[*data.Booking]("booking", newFakeBookings(), nil)

	res := e.Create(ctx, anaBooking())
	if !res.Success {
		t.Fatalf("Create failed: %+v", res)
	}
	list := e.ListAll(ctx)
	if len(list.Records) != 1 || list.Records[0].Status != lifecycle.Pending {
		t.Fatalf("expected one Pending booking, got %+v", list.Records)
	}

	if tr := e.Transition(ctx, res.ID, "Declined"); !tr.Success {
		t.Fatalf("decline failed: %+v", tr)
	}
	if n := len(e.ListAll(ctx).Records); n != 0 {
		t.Fatalf("expected zero bookings after decline, got %d", n)
	}
}

func TestWithout(t *testing.T) {
	a, b := anaBooking(), anaBooking()
	a.ID, b.ID = bson.NewObjectID(), bson.NewObjectID()

	out := lifecycle.Without([]*data.Booking{a, b}, a.ID.Hex())
	if len(out) != 1 || out[0] != b {
		t.Fatalf("Without returned %v", out)
	}
}
