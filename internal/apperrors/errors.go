// Package apperrors defines the error taxonomy shared by the storefront:
// validation, authentication, data store and authorization failures.
//
// Every failure is terminal for the request that produced it. Callers
// inspect the Kind with errors.As and match the sentinels with errors.Is.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors wrapped by data store failures.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Kind classifies an Error.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindDataStore
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuth:
		return "AuthError"
	case KindDataStore:
		return "DataStoreError"
	case KindAuthorization:
		return "AuthorizationError"
	default:
		return "UnknownError"
	}
}

// Error carries a Kind plus the operation that failed.
type Error struct {
	Kind    Kind
	Op      string            // e.g. "wishlist.Add"
	Message string            // user facing
	Fields  map[string]string // per-field messages for validation failures
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports missing or malformed input.
func Validation(op, message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Fields: fields}
}

// Auth reports invalid credentials or a duplicate account.
func Auth(op, message string, err error) *Error {
	return &Error{Kind: KindAuth, Op: op, Message: message, Err: err}
}

// DataStore reports a failed query or write.
func DataStore(op string, err error) *Error {
	return &Error{Kind: KindDataStore, Op: op, Message: "data store request failed", Err: err}
}

// Authorization reports an authenticated caller lacking a privilege.
func Authorization(op, message string) *Error {
	return &Error{Kind: KindAuthorization, Op: op, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromValidator converts validator.ValidationErrors into a ValidationError
// with one message per failing field. Any other error is passed through
// as a generic validation failure.
func FromValidator(op string, err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: KindValidation, Op: op, Message: "invalid input", Err: err}
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return Validation(op, "Validation failed", fields)
}
