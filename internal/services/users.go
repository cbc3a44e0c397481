package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/pkg/utils"
)

const usersCollection = "users"

var (
	// ErrDuplicateEmail is returned by Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrPasswordRequired is returned by Create when no password was staged.
	ErrPasswordRequired = errors.New("password required")
)

// UserStore persists user records. Implementations hash any password staged
// with User.SetPassword before writing and never store plaintext.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

// MongoUserStore is the MongoDB-backed UserStore.
type MongoUserStore struct {
	col    *mongo.Collection
	hasher utils.PasswordHasher
	now    func() time.Time
}

func NewMongoUserStore(db *mongo.Database, hasher utils.PasswordHasher) *MongoUserStore {
	return &MongoUserStore{
		col:    db.Collection(usersCollection),
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique email index.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	})
	return err
}

func (s *MongoUserStore) Create(ctx context.Context, u *models.User) error {
	if !u.PasswordChanged() || u.PendingPassword() == "" {
		return ErrPasswordRequired
	}
	hash, err := s.hasher.Hash(u.PendingPassword())
	if err != nil {
		return err
	}

	now := s.now()
	doc := *u
	doc.ID = primitive.NewObjectID()
	doc.Email = utils.NormalizeEmail(doc.Email)
	doc.Password = hash
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.ApplyDefaults()

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	*u = doc
	u.MarkPasswordPersisted(hash)
	return nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": utils.NormalizeEmail(email)})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Save writes the mutable profile fields. The password hash is rewritten
// only when SetPassword was called since the user was loaded. Email is
// immutable and never written here.
func (s *MongoUserStore) Save(ctx context.Context, u *models.User) error {
	set := bson.M{
		"name":       u.Name,
		"photo":      u.Photo,
		"phone":      u.Phone,
		"bio":        u.Bio,
		"updated_at": s.now(),
	}

	var hash string
	if u.PasswordChanged() {
		if u.PendingPassword() == "" {
			return ErrPasswordRequired
		}
		var err error
		if hash, err = s.hasher.Hash(u.PendingPassword()); err != nil {
			return err
		}
		set["password"] = hash
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	u.UpdatedAt = set["updated_at"].(time.Time)
	if hash != "" {
		u.MarkPasswordPersisted(hash)
	}
	return nil
}
