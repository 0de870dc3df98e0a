package button

import "errors"

// Sentinel errors returned by the pool and instance operations. Compare
// with errors.Is, not ==, in case a future wrapper adds context.
var (
	// ErrInvalidParam is returned when a required handle or argument is nil.
	ErrInvalidParam = errors.New("button: invalid parameter")

	// ErrIncorrectParam is returned by SetParam when validation fails.
	ErrIncorrectParam = errors.New("button: incorrect parameter")

	// ErrDisabled is returned by Step when the instance is not active.
	ErrDisabled = errors.New("button: disabled")

	// ErrPoolExhausted is returned by New when no slot is free.
	ErrPoolExhausted = errors.New("button: pool exhausted")
)
