package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
)

const accountCollection = "accounts"

// retryDelay is the pause before the single transparent retry of a
// transient storage fault.
const retryDelay = 100 * time.Millisecond

// MongoAccountRepository persists accounts in a single collection with
// unique indexes on username and email. Each exported method is one Mongo
// write or read, so no partial update is ever observable.
type MongoAccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{coll: db.Collection(accountCollection)}
}

type accountDoc struct {
	ID               string    `bson:"_id"`
	Username         string    `bson:"username"`
	Email            string    `bson:"email"`
	PasswordHash     string    `bson:"password_hash"`
	VerificationCode string    `bson:"verification_code,omitempty"`
	Verified         bool      `bson:"verified"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func (d *accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:               d.ID,
		Username:         d.Username,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		VerificationCode: d.VerificationCode,
		Verified:         d.Verified,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// EnsureIndexes creates the unique indexes that arbitrate concurrent
// registration races. Call once at startup.
func (r *MongoAccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

func (r *MongoAccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.Account, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	return r.findOne(ctx, filter)
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	err := r.withRetry(ctx, func(ctx context.Context) error {
		return r.coll.FindOne(ctx, filter).Decode(&doc)
	})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpsertPending writes a non-verified account in one atomic operation:
// insert when the id is new, otherwise overwrite the hash and code in
// place. The unique indexes are the final arbiter of concurrent inserts;
// the losing writer gets domain.ErrAccountExists, never a raw driver error.
func (r *MongoAccountRepository) UpsertPending(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"password_hash":     account.PasswordHash,
			"verification_code": account.VerificationCode,
			"verified":          false,
			"updated_at":        now,
		},
		"$setOnInsert": bson.M{
			"username":   account.Username,
			"email":      account.Email,
			"created_at": now,
		},
	}

	err := r.withRetry(ctx, func(ctx context.Context) error {
		_, err := r.coll.UpdateByID(ctx, account.ID, update, options.Update().SetUpsert(true))
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, err
	}

	return r.FindByID(ctx, account.ID)
}

// MarkVerified conditions the mutation on code equality inside a single
// update, so concurrent submissions of the same code see at most one match.
func (r *MongoAccountRepository) MarkVerified(ctx context.Context, email, code string) (bool, error) {
	filter := bson.M{"email": email, "verification_code": code}
	update := bson.M{
		"$set":   bson.M{"verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"verification_code": ""},
	}

	var matched int64
	err := r.withRetry(ctx, func(ctx context.Context) error {
		res, err := r.coll.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		matched = res.MatchedCount
		return nil
	})
	if err != nil {
		return false, err
	}
	return matched == 1, nil
}

func (r *MongoAccountRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	update := bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}}

	var matched int64
	err := r.withRetry(ctx, func(ctx context.Context) error {
		res, err := r.coll.UpdateByID(ctx, id, update)
		if err != nil {
			return err
		}
		matched = res.MatchedCount
		return nil
	})
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// withRetry runs op, retrying once on transient faults (network errors and
// timeouts), then translates a still-failing transient fault into
// domain.ErrStorageUnavailable.
func (r *MongoAccountRepository) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil && isTransient(err) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return err
}

func isTransient(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
