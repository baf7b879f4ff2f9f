// Package data provides DB models and stores.
package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("document already exists")
)

// UsersStore performs profile DB operations.
type UsersStore struct {
	// coll is reference to "users" collection in MongoDB
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateProfile writes the profile document paired with a new identity.
func (u *UsersStore) CreateProfile(ctx context.Context, user *User) error {
	_, err := u.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// GetProfile finds a profile by uid.
func (u *UsersStore) GetProfile(ctx context.Context, uid string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetFlags merges the non-nil flags into the profile, leaving every other
// field untouched.
func (u *UsersStore) SetFlags(ctx context.Context, uid string, isAdmin, hasSeenGuide *bool) error {
	set := bson.M{}
	if isAdmin != nil {
		set["isAdmin"] = *isAdmin
	}
	if hasSeenGuide != nil {
		set["hasSeenGuide"] = *hasSeenGuide
	}
	if len(set) == 0 {
		return nil
	}

	res, err := u.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
