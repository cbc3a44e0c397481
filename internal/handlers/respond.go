package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/AnshRaj112/pinvent-backend/internal/middleware"
	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

const maxJSONBody = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse is the body of simple acknowledgements.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Code:    string(services.KindValidation),
		})
		return false
	}
	return true
}

// statusFor maps an error kind to an HTTP status. notFound is the status
// the calling route uses for missing records.
func statusFor(kind services.Kind, notFound int) int {
	switch kind {
	case services.KindValidation, services.KindDuplicateEmail, services.KindInvalidCredentials:
		return http.StatusBadRequest
	case services.KindNotFound:
		return notFound
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// currentUser returns the user RequireAuth stored on the request, answering
// 401 itself when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Message: "Not authorized, please login"})
	}
	return user, ok
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error, notFound int) {
	kind := services.KindOf(err)
	if kind == services.KindUpstream {
		logError(log, "Request failed", err)
	}
	writeJSON(w, statusFor(kind, notFound), ErrorResponse{
		Message: services.PublicMessage(err),
		Code:    string(kind),
	})
}

// logError logs err with its oops code and context when present.
func logError(log *zap.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		fields := []zap.Field{zap.String("error", oopsErr.Error())}
		if code := oopsErr.Code(); code != nil {
			fields = append(fields, zap.Any("code", code))
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			fields = append(fields, zap.Any("context", ctx))
		}
		log.Error(msg, fields...)
		return
	}
	log.Error(msg, zap.Error(err))
}
