// Package direrr defines the reply-code taxonomy shared by every layer of the
// directory Modify pipeline, from the value engine up through dispatch.
package direrr

import "fmt"

// ReplyCode mirrors the reply codes a directory protocol would put on the wire.
// It is orthogonal to Go's error interface: every *Error carries one, and
// callers that only care about control flow (retry vs. surface) switch on it.
type ReplyCode uint32

const (
	Success ReplyCode = iota

	// Value-engine level
	TypeOrValueExists
	NoSuchAttribute
	ConstraintViolation
	InvalidSyntax

	// Modify-engine / schema level
	SchemaViolation

	// Policy / protocol level
	ProtocolError
	InsufficientAccess
	Referral
	PartialResults
	UnwillingToPerform
	AssertionFailed
	NoSuchObject

	// Transaction driver level
	NoOperation
	Busy
	Abandoned

	// Catch-all
	Other
)

func (c ReplyCode) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case TypeOrValueExists:
		return "TYPE_OR_VALUE_EXISTS"
	case NoSuchAttribute:
		return "NO_SUCH_ATTRIBUTE"
	case ConstraintViolation:
		return "CONSTRAINT_VIOLATION"
	case InvalidSyntax:
		return "INVALID_SYNTAX"
	case SchemaViolation:
		return "SCHEMA_VIOLATION"
	case ProtocolError:
		return "PROTOCOL_ERROR"
	case InsufficientAccess:
		return "INSUFFICIENT_ACCESS"
	case Referral:
		return "REFERRAL"
	case PartialResults:
		return "PARTIAL_RESULTS"
	case UnwillingToPerform:
		return "UNWILLING_TO_PERFORM"
	case AssertionFailed:
		return "ASSERTION_FAILED"
	case NoSuchObject:
		return "NO_SUCH_OBJECT"
	case NoOperation:
		return "NO_OPERATION"
	case Busy:
		return "BUSY"
	case Abandoned:
		return "ABANDONED"
	case Other:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Error is the error type returned by dispatch's request validation (the
// value engine and transaction driver report bare ReplyCodes and
// StorageErrors instead). It carries a reply code so the caller can decide whether to
// retry, surface, or translate without string-matching.
type Error struct {
	Code ReplyCode
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// New creates a new *Error with the given code and message.
func New(code ReplyCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Newf creates a new *Error with a formatted message.
func Newf(code ReplyCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ReplyCode from err, or Other if err is not a *Error.
func CodeOf(err error) ReplyCode {
	if err == nil {
		return Success
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return Other
}

// StorageCode is the narrower taxonomy returned by the storage engine; the
// transaction driver maps these onto ReplyCode / retry decisions.
type StorageCode uint32

const (
	StorageOK StorageCode = iota
	StorageDeadlock
	StorageNotGranted
	StorageNotFound
	StorageOther
)

func (c StorageCode) String() string {
	switch c {
	case StorageOK:
		return "OK"
	case StorageDeadlock:
		return "DEADLOCK"
	case StorageNotGranted:
		return "NOT_GRANTED"
	case StorageNotFound:
		return "NOT_FOUND"
	default:
		return "OTHER"
	}
}

// StorageError is returned by the storage engine collaborators (txn
// begin/commit/abort, lookup, persist). The transaction driver inspects Code
// to decide retry vs. surfacing "internal error".
type StorageError struct {
	Code StorageCode
	Msg  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func NewStorageError(code StorageCode, msg string) *StorageError {
	return &StorageError{Code: code, Msg: msg}
}

// IsTransient reports whether a storage error should drive a retry rather
// than be surfaced to the client.
func IsTransient(err error) bool {
	se, ok := err.(*StorageError)
	if !ok {
		return false
	}
	return se.Code == StorageDeadlock || se.Code == StorageNotGranted
}
