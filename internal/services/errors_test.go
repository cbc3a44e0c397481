package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, fmt.Sprint(oopsErr.Code()))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), services.KindUpstream},
		{"validation", oops.Code("VALIDATION_ERROR").Errorf("bad"), services.KindValidation},
		{"expired session", oops.Code(services.CodeTokenExpired).Errorf("expired"), services.KindUnauthorized},
		{"invalid session", oops.Code(services.CodeInvalidToken).Errorf("invalid"), services.KindUnauthorized},
		{"unknown code", oops.Code("SOMETHING_ELSE").Errorf("x"), services.KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.KindOf(tt.err))
		})
	}
}

func TestPublicMessage_HidesUpstreamDetail(t *testing.T) {
	err := oops.Code("UPSTREAM_FAILURE").With("operation", "find user").Wrap(errors.New("mongo: connection reset by 10.0.0.4"))
	assert.Equal(t, "Something went wrong, please try again", services.PublicMessage(err))
	assert.Equal(t, "Something went wrong, please try again", services.PublicMessage(errors.New("raw driver error")))
}

func TestPublicMessage_ClientErrors(t *testing.T) {
	err := oops.Code("NOT_FOUND").Errorf("User not found")
	assert.Equal(t, "User not found", services.PublicMessage(err))
	assert.Equal(t, "", services.PublicMessage(nil))
}

func TestIsKind(t *testing.T) {
	assert.True(t, services.IsKind(oops.Code("TOKEN_EXPIRED").Errorf("expired"), services.KindUnauthorized))
	assert.True(t, services.IsKind(errors.New("driver"), services.KindUpstream))
	assert.False(t, services.IsKind(oops.Code("NOT_FOUND").Errorf("gone"), services.KindUpstream))
	assert.False(t, services.IsKind(nil, services.KindUpstream))
}
