package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// SessionDuration is the lifetime of a session token and its cookie.
const SessionDuration = 24 * time.Hour

// SessionClaims carries the user identity inside a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// SessionIssuer signs and verifies HS256 session tokens. Tokens are not
// tracked server-side; a leaked token stays valid until it expires.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	s.now = now
	return s
}

// TTL returns the token lifetime.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for userID.
func (s *SessionIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", oops.Code(CodeInvalidToken).Errorf("user id cannot be empty")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code(string(KindUpstream)).With("operation", "sign session token").Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the user id claim.
func (s *SessionIssuer) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", oops.Code(CodeInvalidToken).Errorf("token is empty")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", oops.Code(CodeTokenExpired).Errorf("token has expired")
		}
		return "", oops.Code(CodeInvalidToken).Wrapf(err, "invalid token")
	}
	if !token.Valid || claims.UserID == "" {
		return "", oops.Code(CodeInvalidToken).Errorf("invalid token")
	}
	return claims.UserID, nil
}
