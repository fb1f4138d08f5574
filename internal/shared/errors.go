package shared

import "errors"

// Classification sentinels. Domain packages wrap these so transport code can
// map any error to a status with errors.Is, without knowing every sentinel.
var (
	// ErrNotFound indicates a resource absent or not owned by the caller's company.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a rejected command payload; never retried.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates an integrity failure, such as posting against a deleted account.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a request without a valid session token.
	ErrUnauthorized = errors.New("unauthorized")
)
