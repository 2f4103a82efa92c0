package auth

import "errors"

// Failure kinds of the Google sign-in flow. Components wrap the
// underlying cause with one of these so the endpoint can map outcomes.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrMalformedIdentity   = errors.New("malformed identity")
	ErrStorageFailure      = errors.New("storage failure")
	ErrInternal            = errors.New("internal error")
)

// KindOf names the failure kind carried by err, for logging.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, ErrMalformedIdentity):
		return "malformed_identity"
	case errors.Is(err, ErrStorageFailure):
		return "storage_failure"
	default:
		return "internal_error"
	}
}
