package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPhoto = "http://clevadesk.com/wp-content/uploads/2016/09/products-icon.png"
	DefaultPhone = "+91"
	DefaultBio   = "bio"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // bcrypt hash, never plaintext

	Photo string `bson:"photo" json:"photo"`
	Phone string `bson:"phone" json:"phone"`
	Bio   string `bson:"bio" json:"bio"`

	// plaintext waiting to be hashed by the store on the next Create/Save
	pendingPassword string
	passwordChanged bool
}

// SetPassword stages a new plaintext password. The store hashes it on the
// next Create or Save; the plaintext is never persisted.
func (u *User) SetPassword(plaintext string) {
	u.pendingPassword = plaintext
	u.passwordChanged = true
}

// PasswordChanged reports whether SetPassword was called since the last save.
func (u *User) PasswordChanged() bool {
	return u.passwordChanged
}

// PendingPassword returns the staged plaintext, if any.
func (u *User) PendingPassword() string {
	return u.pendingPassword
}

// MarkPasswordPersisted stores the new hash and clears the staged plaintext.
func (u *User) MarkPasswordPersisted(hash string) {
	u.Password = hash
	u.pendingPassword = ""
	u.passwordChanged = false
}

// ApplyDefaults fills unset profile fields.
func (u *User) ApplyDefaults() {
	if u.Photo == "" {
		u.Photo = DefaultPhoto
	}
	if u.Phone == "" {
		u.Phone = DefaultPhone
	}
	if u.Bio == "" {
		u.Bio = DefaultBio
	}
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
	Token string `json:"token,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Phone: u.Phone,
		Bio:   u.Bio,
	}
}
