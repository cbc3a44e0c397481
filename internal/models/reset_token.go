package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResetToken is a stored password-reset grant. Only the SHA-256 of the raw
// token is kept; the raw value exists only in the e-mailed link.
type ResetToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	TokenHash string             `bson:"token" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}

// IsExpired reports whether the token is no longer redeemable at now.
func (t *ResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
