package data

import (
	"context"
	"errors"
	"time"

	"github.com/PaulBabatuyi/surepay-gRPC/internal/normalize"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AccountsStore performs identity account DB operations.
type AccountsStore struct {
	// coll is reference to "accounts" collection in MongoDB
	coll *mongo.Collection
}

// NewAccountsStore returns an AccountsStore using the provided collection.
func NewAccountsStore(coll *mongo.Collection) *AccountsStore {
	return &AccountsStore{coll: coll}
}

// CreateAccount inserts a new unverified account with a hashed password.
func (a *AccountsStore) CreateAccount(ctx context.Context, email, hashedPassword string) (*Account, error) {
	now := time.Now().UTC()
	acc := &Account{
		Email:     normalize.Email(email),
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := a.coll.InsertOne(ctx, acc)
	if err != nil {
		// unique index on email
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	acc.ID = result.InsertedID.(bson.ObjectID)
	return acc, nil
}

// GetAccountByEmail finds an account by normalized email.
func (a *AccountsStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return a.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetAccountByID finds an account by its hex id (the uid).
func (a *AccountsStore) GetAccountByID(ctx context.Context, uid string) (*Account, error) {
	oid, err := bson.ObjectIDFromHex(uid)
	if err != nil {
		return nil, ErrNotFound
	}
	return a.findOne(ctx, bson.M{"_id": oid})
}

func (a *AccountsStore) findOne(ctx context.Context, filter bson.M) (*Account, error) {
	var acc Account
	err := a.coll.FindOne(ctx, filter).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// MarkVerified flags the account's email as verified.
func (a *AccountsStore) MarkVerified(ctx context.Context, uid string) error {
	return a.set(ctx, uid, bson.M{"emailVerified": true})
}

// TouchSignOut records the time of the latest sign-out.
func (a *AccountsStore) TouchSignOut(ctx context.Context, uid string) error {
	return a.set(ctx, uid, bson.M{"last_signed_out_at": time.Now().UTC()})
}

func (a *AccountsStore) set(ctx context.Context, uid string, fields bson.M) error {
	oid, err := bson.ObjectIDFromHex(uid)
	if err != nil {
		return ErrNotFound
	}
	fields["updated_at"] = time.Now().UTC()
	res, err := a.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
