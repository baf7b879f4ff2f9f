package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Document is a record governed by the engine (a booking or a request).
type Document interface {
	RecordID() string
	OwnerID() string
	// Prepare trims user input and stamps the initial status and creation time.
	Prepare(status Status, createdAt time.Time)
}

// Store persists documents of one collection.
type Store[T Document] interface {
	Insert(ctx context.Context, doc T) (string, error)
	// List returns every document, newest first.
	List(ctx context.Context) ([]T, error)
	// ListByOwner returns the owner's documents, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]T, error)
	// Approve patches only the status of a Pending document and returns it.
	Approve(ctx context.Context, id string) (T, error)
	// Delete removes a Pending document and returns what was removed.
	Delete(ctx context.Context, id string) (T, error)
}

// TransitionHook runs after a successful transition. It is not part of the
// store write: a failing hook never undoes the transition.
type TransitionHook[T Document] func(ctx context.Context, doc T, to Status) error

// Result is the structured outcome of a create or transition.
type Result struct {
	Success bool
	ID      string
	Msg     string
}

// Listing is the structured outcome of a list call.
type Listing[T Document] struct {
	Success bool
	Records []T
	Msg     string
}

// Engine enforces the status lifecycle for one kind of record.
type Engine[T Document] struct {
	kind     string
	store    Store[T]
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
	hooks    []TransitionHook[T]
}

// NewEngine returns an engine for records of the given kind ("booking", "request").
func NewEngine[T Document](kind string, store Store[T], log *slog.Logger) *Engine[T] {
	if log == nil {
		log = slog.Default()
	}
	v := validator.New()
	// report wire field names (firstName) rather than Go names (FirstName)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Engine[T]{
		kind:     kind,
		store:    store,
		validate: v,
		log:      log.With("kind", kind),
		now:      time.Now,
	}
}

// OnTransition registers a hook run after every successful transition.
func (e *Engine[T]) OnTransition(h TransitionHook[T]) {
	e.hooks = append(e.hooks, h)
}

// Kind returns the record kind this engine manages.
func (e *Engine[T]) Kind() string { return e.kind }

// Validate normalizes doc and reports what Create would reject, without
// touching the store.
func (e *Engine[T]) Validate(doc T) Result {
	doc.Prepare(Pending, e.now().UTC())
	if err := e.validate.Struct(doc); err != nil {
		return Result{Msg: e.validationMessage(err)}
	}
	return Result{Success: true}
}

// Create validates and stores a new Pending record.
func (e *Engine[T]) Create(ctx context.Context, doc T) Result {
	if res := e.Validate(doc); !res.Success {
		return res
	}

	id, err := e.store.Insert(ctx, doc)
	if err != nil {
		e.log.Error("create failed", "owner", doc.OwnerID(), "err", err)
		return Result{Msg: fmt.Sprintf("Failed to save the %s: %v", e.kind, err)}
	}
	return Result{Success: true, ID: id}
}

// ListAll returns every record, newest first. It never fails outright: a
// store error yields an empty listing with a message.
func (e *Engine[T]) ListAll(ctx context.Context) Listing[T] {
	docs, err := e.store.List(ctx)
	if err != nil {
		e.log.Error("list failed", "err", err)
		return Listing[T]{Records: []T{}, Msg: fmt.Sprintf("Failed to load %ss: %v", e.kind, err)}
	}
	return Listing[T]{Success: true, Records: docs}
}

// ListMine returns the owner's records, newest first.
func (e *Engine[T]) ListMine(ctx context.Context, ownerID string) Listing[T] {
	docs, err := e.store.ListByOwner(ctx, ownerID)
	if err != nil {
		e.log.Error("list by owner failed", "owner", ownerID, "err", err)
		return Listing[T]{Records: []T{}, Msg: fmt.Sprintf("Failed to load %ss: %v", e.kind, err)}
	}
	return Listing[T]{Success: true, Records: docs}
}

// Transition moves a Pending record to Approved (status patch) or Declined
// (hard delete).
func (e *Engine[T]) Transition(ctx context.Context, id string, to string) Result {
	status, err := ParseStatus(to)
	if err != nil || !status.Terminal() {
		return Result{ID: id, Msg: fmt.Sprintf("Cannot move a %s to %q", e.kind, to)}
	}

	var doc T
	switch status {
	case Approved:
		doc, err = e.store.Approve(ctx, id)
	case Declined:
		doc, err = e.store.Delete(ctx, id)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return Result{ID: id, Msg: fmt.Sprintf("The %s no longer exists", e.kind)}
		case errors.Is(err, ErrTerminal):
			return Result{ID: id, Msg: fmt.Sprintf("The %s was already processed", e.kind)}
		}
		e.log.Error("transition failed", "id", id, "to", status, "err", err)
		return Result{ID: id, Msg: fmt.Sprintf("Error updating status: %v", err)}
	}

	for _, h := range e.hooks {
		if err := h(ctx, doc, status); err != nil {
			e.log.Warn("transition hook failed", "id", id, "to", status, "err", err)
		}
	}
	return Result{Success: true, ID: id}
}

func (e *Engine[T]) validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Sprintf("Invalid %s: %v", e.kind, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Sprintf("Please fill in all required fields %v", fields)
}

// Without returns records minus the one with the given id, for callers that
// keep a list in memory and want to drop a declined record without re-fetching.
func Without[T Document](records []T, id string) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if r.RecordID() != id {
			out = append(out, r)
		}
	}
	return out
}
