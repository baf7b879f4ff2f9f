// Package thread keeps two-party (user <-> admin) chat threads in sync:
// it appends messages and pushes ordered snapshots to live subscribers.
package thread

import (
	"errors"
	"strings"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/data"
)

// ErrInvalidPair is returned when a message is not between one user and the admin.
var ErrInvalidPair = errors.New("a thread is between exactly one user and admin")

// Key identifies a thread by its two participants, independent of who sent
// what: KeyFor(a, b) == KeyFor(b, a).
type Key string

// KeyFor returns the canonical key of the thread between a and b.
func KeyFor(a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key(a + "#" + b)
}

// UserKey returns the key of userID's thread with the admin.
func UserKey(userID string) Key {
	return KeyFor(userID, data.AdminID)
}

// Participants splits the key back into its two ids.
func (k Key) Participants() (string, string) {
	a, b, _ := strings.Cut(string(k), "#")
	return a, b
}

// userOf returns the non-admin participant of a sender/recipient pair.
func userOf(from, to string) (string, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	switch {
	case from == "" || to == "" || from == to:
		return "", ErrInvalidPair
	case from == data.AdminID:
		return to, nil
	case to == data.AdminID:
		return from, nil
	}
	return "", ErrInvalidPair
}
