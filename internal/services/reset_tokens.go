package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/pinvent-backend/internal/models"
)

const (
	// ResetTokenExpiry is how long a reset link stays redeemable.
	ResetTokenExpiry = 30 * time.Minute

	resetTokenBytes       = 32
	resetTokensCollection = "tokens"
)

// ResetTokenRepository stores hashed reset tokens, at most one per user.
type ResetTokenRepository interface {
	// Replace stores t as the only token for t.UserID, discarding any prior one.
	Replace(ctx context.Context, t *models.ResetToken) error
	// Consume atomically removes and returns the token with tokenHash that is
	// still live at now. Returns ErrNotFound otherwise.
	Consume(ctx context.Context, tokenHash string, now time.Time) (*models.ResetToken, error)
	// DeleteExpired removes tokens whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// HashResetToken returns the hex SHA-256 of a raw reset token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ResetTokenManager issues and redeems single-use password reset tokens.
type ResetTokenManager struct {
	repo   ResetTokenRepository
	users  UserStore
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

func NewResetTokenManager(repo ResetTokenRepository, users UserStore, ttl time.Duration) *ResetTokenManager {
	if ttl <= 0 {
		ttl = ResetTokenExpiry
	}
	return &ResetTokenManager{
		repo:   repo,
		users:  users,
		ttl:    ttl,
		now:    time.Now,
		random: rand.Reader,
	}
}

// WithClock replaces the time source. Used by tests.
func (m *ResetTokenManager) WithClock(now func() time.Time) *ResetTokenManager {
	m.now = now
	return m
}

// Issue creates a new token for userID, invalidating any earlier one, and
// returns the raw value. Only its hash is stored.
func (m *ResetTokenManager) Issue(ctx context.Context, userID primitive.ObjectID) (string, error) {
	secret := make([]byte, resetTokenBytes)
	if _, err := io.ReadFull(m.random, secret); err != nil {
		return "", oops.Code(string(KindUpstream)).With("operation", "generate reset token").Wrap(err)
	}
	raw := hex.EncodeToString(secret) + userID.Hex()

	now := m.now()
	token := &models.ResetToken{
		UserID:    userID,
		TokenHash: HashResetToken(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Replace(ctx, token); err != nil {
		return "", upstream("store reset token", err)
	}
	return raw, nil
}

// Redeem sets newPassword on the owner of raw and consumes the token. Unknown,
// expired and already used tokens all fail with the same NotFound error.
func (m *ResetTokenManager) Redeem(ctx context.Context, raw, newPassword string) error {
	if newPassword == "" {
		return validationFailed("password", "Please add a Password")
	}
	if raw == "" {
		return notFound(msgInvalidResetLink)
	}

	token, err := m.repo.Consume(ctx, HashResetToken(raw), m.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(msgInvalidResetLink)
		}
		return upstream("consume reset token", err)
	}

	user, err := m.users.FindByID(ctx, token.UserID.Hex())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(msgInvalidResetLink)
		}
		return upstream("load user", err)
	}

	user.SetPassword(newPassword)
	if err := m.users.Save(ctx, user); err != nil {
		return upstream("save user", err)
	}
	return nil
}

// PurgeExpired deletes every token that can no longer be redeemed.
func (m *ResetTokenManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, upstream("purge reset tokens", err)
	}
	return n, nil
}

// MongoResetTokenRepository is the MongoDB-backed ResetTokenRepository.
type MongoResetTokenRepository struct {
	col *mongo.Collection
}

func NewMongoResetTokenRepository(db *mongo.Database) *MongoResetTokenRepository {
	return &MongoResetTokenRepository{col: db.Collection(resetTokensCollection)}
}

// EnsureIndexes creates the one-token-per-user index, the hash lookup index
// and a TTL index so MongoDB reaps stale rows on its own.
func (r *MongoResetTokenRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_user_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_token"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(0),
		},
	})
	return err
}

// Replace upserts keyed on user_id so the swap is a single write. A
// concurrent upsert for the same user can lose the unique-index race; the
// write is retried once as a plain replace.
func (r *MongoResetTokenRepository) Replace(ctx context.Context, t *models.ResetToken) error {
	doc := bson.M{
		"user_id":    t.UserID,
		"token":      t.TokenHash,
		"created_at": t.CreatedAt,
		"expires_at": t.ExpiresAt,
	}
	filter := bson.M{"user_id": t.UserID}
	opts := options.Replace().SetUpsert(true)

	res, err := r.col.ReplaceOne(ctx, filter, doc, opts)
	if mongo.IsDuplicateKeyError(err) {
		res, err = r.col.ReplaceOne(ctx, filter, doc, opts)
	}
	if err != nil {
		return err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		t.ID = id
	}
	return nil
}

func (r *MongoResetTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (*models.ResetToken, error) {
	filter := bson.M{
		"token":      tokenHash,
		"expires_at": bson.M{"$gt": now},
	}
	var t models.ResetToken
	if err := r.col.FindOneAndDelete(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *MongoResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
