package services_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/pinvent-backend/internal/services"
	"github.com/AnshRaj112/pinvent-backend/internal/services/servicestest"
	"github.com/AnshRaj112/pinvent-backend/pkg/utils"
)

const testSecret = "test-signing-secret"

// countingHasher counts Hash calls on top of bcrypt.
type countingHasher struct {
	utils.PasswordHasher
	hashes atomic.Int32
}

func newCountingHasher() *countingHasher {
	return &countingHasher{PasswordHasher: utils.NewBcryptHasher()}
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.hashes.Add(1)
	return h.PasswordHasher.Hash(password)
}

type authFixture struct {
	auth     *services.AuthService
	users    *servicestest.UserStore
	tokens   *servicestest.ResetTokenRepository
	resets   *services.ResetTokenManager
	sessions *services.SessionIssuer
	mailer   *servicestest.Mailer
	hasher   *countingHasher
	clock    *servicestest.Clock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	clock := servicestest.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	hasher := newCountingHasher()
	users := servicestest.NewUserStore(hasher)
	tokens := servicestest.NewResetTokenRepository()
	resets := services.NewResetTokenManager(tokens, users, services.ResetTokenExpiry).WithClock(clock.Now)
	sessions := services.NewSessionIssuer(testSecret, services.SessionDuration).WithClock(clock.Now)
	mailer := &servicestest.Mailer{}

	auth := services.NewAuthService(services.AuthDeps{
		Users:       users,
		Hasher:      hasher,
		Sessions:    sessions,
		Resets:      resets,
		Mailer:      mailer,
		FrontendURL: "https://pinvent.example/",
	})

	return &authFixture{
		auth:     auth,
		users:    users,
		tokens:   tokens,
		resets:   resets,
		sessions: sessions,
		mailer:   mailer,
		hasher:   hasher,
		clock:    clock,
	}
}

func assertKind(t *testing.T, err error, kind services.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, services.KindOf(err), "unexpected error kind for %v", err)
}
