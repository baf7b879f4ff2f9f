// Package lifecycle implements the Pending -> Approved | Declined state
// machine shared by bookings and payment requests.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the value of the status field on bookings and requests.
type Status string

const (
	Pending  Status = "Pending"
	Approved Status = "Approved"
	Declined Status = "Declined"
)

var (
	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("record not found")
	// ErrTerminal is returned when a transition starts from a non-Pending record.
	ErrTerminal = errors.New("record is not pending")
	// ErrInvalidStatus is returned for unknown or non-terminal target statuses.
	ErrInvalidStatus = errors.New("invalid status")
)

// ParseStatus folds the spellings found in stored documents onto the
// canonical values. An empty string is Pending, which is also what a
// document without a status field means.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return Pending, nil
	case "approved", "accepted":
		return Approved, nil
	case "declined", "cancelled", "canceled":
		return Declined, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == Approved || s == Declined
}

// PendingSpellings lists the stored values that still count as Pending.
// Stores use it to build conditional filters.
func PendingSpellings() []string {
	return []string{"", string(Pending), "pending"}
}
