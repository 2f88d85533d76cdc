package domain

import "errors"

// Error taxonomy shared by stores, the coordinator, and HTTP handlers.
// Stores translate driver errors into these sentinels; handlers map them
// to status codes.
var (
	// ErrNotFound: a referenced Student/User/Address row is absent.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken: another User already owns the email. Raised by the
	// fast-path pre-check and, authoritatively, by the unique index.
	ErrEmailTaken = errors.New("email already registered")

	// ErrTransientWrite: retryable write conflict from the database
	// (serialization failure or deadlock). The delete retry controller
	// absorbs a bounded number of these.
	ErrTransientWrite = errors.New("transient write conflict")

	// ErrStorage: asset store upload/delete failure.
	ErrStorage = errors.New("asset storage failure")

	// ErrInvalidID: malformed id in a path parameter.
	ErrInvalidID = errors.New("invalid id")
)
