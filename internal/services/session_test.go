package services_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/pinvent-backend/internal/services"
	"github.com/AnshRaj112/pinvent-backend/internal/services/servicestest"
)

func TestSessionIssuer_RoundTrip(t *testing.T) {
	issuer := services.NewSessionIssuer(testSecret, services.SessionDuration)

	token, err := issuer.Issue("65f0a1b2c3d4e5f600000001")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0a1b2c3d4e5f600000001", userID)
}

func TestSessionIssuer_Expired(t *testing.T) {
	clock := servicestest.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	issuer := services.NewSessionIssuer(testSecret, services.SessionDuration).WithClock(clock.Now)

	token, err := issuer.Issue("65f0a1b2c3d4e5f600000001")
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = issuer.Verify(token)
	assertCode(t, err, services.CodeTokenExpired)
	assertKind(t, err, services.KindUnauthorized)
}

func TestSessionIssuer_Rejects(t *testing.T) {
	issuer := services.NewSessionIssuer(testSecret, services.SessionDuration)
	other := services.NewSessionIssuer("another-secret", services.SessionDuration)

	foreign, err := other.Issue("65f0a1b2c3d4e5f600000001")
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, services.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "65f0a1b2c3d4e5f600000001",
	})
	wrongAlg, err := hs512.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, services.SessionClaims{UserID: "65f0a1b2c3d4e5f600000001"})
	noExpiry, err := noExp.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "abc.def"},
		{"wrong secret", foreign},
		{"wrong algorithm", wrongAlg},
		{"missing expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := issuer.Verify(tt.token)
			assertCode(t, err, services.CodeInvalidToken)
			assert.Empty(t, userID)
		})
	}
}

func TestSessionIssuer_DistinctTokens(t *testing.T) {
	issuer := services.NewSessionIssuer(testSecret, services.SessionDuration)
	a, err := issuer.Issue("65f0a1b2c3d4e5f600000001")
	require.NoError(t, err)
	b, err := issuer.Issue("65f0a1b2c3d4e5f600000001")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
