package services

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/AnshRaj112/pinvent-backend/pkg/utils"
)

// Kind is the closed set of error categories surfaced to callers.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindDuplicateEmail     Kind = "DUPLICATE_EMAIL"
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindUpstream           Kind = "UPSTREAM_FAILURE"
)

// Session token failures. Internal to the issuer; the auth service reports
// both as KindUnauthorized.
const (
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// msgInvalidResetLink is the single message for every failed redemption.
const msgInvalidResetLink = "Invalid or Expired Link"

func validationFailed(field, message string) error {
	return oops.Code(string(KindValidation)).With("field", field).Errorf("%s", message)
}

func fromValidation(err error) error {
	var ve *utils.ValidationError
	if errors.As(err, &ve) {
		return validationFailed(ve.Field, ve.Message)
	}
	return validationFailed("", err.Error())
}

func notFound(message string) error {
	return oops.Code(string(KindNotFound)).Errorf("%s", message)
}

func duplicateEmail() error {
	return oops.Code(string(KindDuplicateEmail)).With("field", "email").Errorf("Account already exists for this mail id")
}

func invalidCredentials(message string) error {
	return oops.Code(string(KindInvalidCredentials)).Errorf("%s", message)
}

func unauthorized(message string) error {
	return oops.Code(string(KindUnauthorized)).Errorf("%s", message)
}

// upstream wraps a collaborator failure. Errors that already carry a code
// pass through unchanged.
func upstream(operation string, err error) error {
	if _, ok := oops.AsOops(err); ok {
		return err
	}
	return oops.Code(string(KindUpstream)).With("operation", operation).Wrap(err)
}

// KindOf returns the kind carried by err. Uncoded errors are upstream failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return KindUpstream
	}
	switch code := fmt.Sprint(oopsErr.Code()); code {
	case CodeInvalidToken, CodeTokenExpired:
		return KindUnauthorized
	case string(KindValidation), string(KindDuplicateEmail), string(KindNotFound),
		string(KindInvalidCredentials), string(KindUnauthorized):
		return Kind(code)
	default:
		return KindUpstream
	}
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// PublicMessage returns a message safe to show to API clients. Upstream
// failures never expose the underlying error text.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case "":
		return ""
	case KindUpstream:
		if oopsErr, ok := oops.AsOops(err); ok {
			if public, ok := oopsErr.Context()["public"].(string); ok && public != "" {
				return public
			}
		}
		return "Something went wrong, please try again"
	default:
		return err.Error()
	}
}
