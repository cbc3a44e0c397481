package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AnshRaj112/pinvent-backend/internal/middleware"
	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind     services.Kind
		notFound int
		want     int
	}{
		{services.KindValidation, http.StatusNotFound, http.StatusBadRequest},
		{services.KindDuplicateEmail, http.StatusNotFound, http.StatusBadRequest},
		{services.KindInvalidCredentials, http.StatusNotFound, http.StatusBadRequest},
		{services.KindNotFound, http.StatusNotFound, http.StatusNotFound},
		{services.KindNotFound, http.StatusBadRequest, http.StatusBadRequest},
		{services.KindUnauthorized, http.StatusNotFound, http.StatusUnauthorized},
		{services.KindUpstream, http.StatusNotFound, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.kind, tt.notFound))
		})
	}
}

func TestWriteErrorLogsUpstreamOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	rec := httptest.NewRecorder()
	writeError(rec, log, oops.Code(string(services.KindUpstream)).With("operation", "find user").Wrap(errors.New("connection reset")), http.StatusNotFound)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Request failed", logs.All()[0].Message)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, string(services.KindUpstream), body.Code)
	assert.NotContains(t, body.Message, "connection reset")

	rec = httptest.NewRecorder()
	writeError(rec, log, oops.Code(string(services.KindNotFound)).Errorf("User not found"), http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, logs.Len())
}

func TestCurrentUser(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := currentUser(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	want := &models.User{Name: "A"}
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), want))
	rec = httptest.NewRecorder()
	got, ok := currentUser(rec, req)
	assert.True(t, ok)
	assert.Same(t, want, got)
	assert.Equal(t, 0, rec.Body.Len())
}
