package library

import "errors"

// Error kinds surfaced by the core. Callers classify with errors.Is;
// messages wrap these with context.
var (
	// ErrInvalidArgument reports a malformed or missing field. The
	// operation is aborted with no side effect.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateKey reports an insert clashing with an existing key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound reports a lookup for an absent entity.
	ErrNotFound = errors.New("not found")

	// ErrIllegalState reports a violated precondition: borrower with a
	// pending fine, unavailable book, no matching active record, or a
	// book blocked from removal by active borrowings.
	ErrIllegalState = errors.New("illegal state")

	// ErrInvalidCredentials reports a failed password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorageRead reports a backing file that exists but cannot be
	// read or parsed. A missing or empty file is not an error.
	ErrStorageRead = errors.New("storage read failed")

	// ErrStorageWrite reports an I/O failure while rewriting a backing
	// file. The in-memory mutation is not rolled back, so memory and
	// disk diverge until the next successful save.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrReferentialIntegrity reports a durable borrowing record whose
	// book or borrower is absent from its own collection. Fatal to the
	// load that hit it.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)
