package domain

import "errors"

// Document loading and persistence.
var (
	// ErrUnsupportedFormat is returned when a file extension maps to no known format.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrParse is returned when a document or literal cannot be parsed.
	ErrParse = errors.New("parse error")
	// ErrSerialize is returned when a value cannot be represented in the target format.
	ErrSerialize = errors.New("serialize error")
)

// Mutations. These are recoverable: the operator may retry with another value.
var (
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrEmptyArray    = errors.New("array is empty")
	ErrValueNotFound = errors.New("value not found")
)

// ErrMalformedValue is returned when operator text is not a valid value literal.
var ErrMalformedValue = errors.New("malformed value literal")

// ErrEditFailed is returned by a Messenger when a previously sent message can no longer be edited.
var ErrEditFailed = errors.New("message edit failed")

// Addressing.
var (
	ErrMalformedPath   = errors.New("malformed path")
	ErrMalformedAction = errors.New("malformed action payload")
	ErrPayloadTooLong  = errors.New("payload exceeds transport limit")
	ErrAddressNotFound = errors.New("address not found")
)

// ErrInvariant marks a traversal that met a shape the caller promised could not occur.
// It signals a programming error and is never offered to the operator as retriable.
var ErrInvariant = errors.New("internal invariant violated")

// ErrStateNotFound is returned when a chat has no stored conversation state.
var ErrStateNotFound = errors.New("conversation state not found")
