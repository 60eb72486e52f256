package session

import (
	"context"
	"errors"

	"github.com/geocoder89/campushub/internal/auth"
)

var (
	// ErrInvalidCredentials is returned by Login when the email is unknown or
	// the password does not match.
	ErrInvalidCredentials = auth.ErrInvalidCredentials

	ErrInvalidProfile       = errors.New("session: invalid signup profile")
	ErrStorageUnavailable   = errors.New("session: durable storage unavailable")
	ErrMalformedSessionData = errors.New("session: malformed persisted session")
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidProfile):
		return "invalid_profile"
	case errors.Is(err, ErrMalformedSessionData):
		return "malformed"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
