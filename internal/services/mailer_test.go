package services_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestSMTPMailer_SendsToSenderAddress(t *testing.T) {
	m := services.NewSMTPMailer("127.0.0.1", closedPort(t), "ops@pinvent.example", "pw", "")

	err := m.Send(context.Background(), "ops@pinvent.example", "Password Reset Request", "<p>hi</p>")
	require.Error(t, err)
	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr), "expected a dial error, got %v", err)
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := services.NewSMTPMailer("127.0.0.1", closedPort(t), "ops@pinvent.example", "pw", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, "a@x.com", "Password Reset Request", "<p>hi</p>")
	assert.ErrorIs(t, err, context.Canceled)
}
