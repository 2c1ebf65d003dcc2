package host

import "errors"

// Domain-specific errors for program loading.
var (
	// ErrInvalidProgram is returned when a program file fails validation.
	ErrInvalidProgram = errors.New("host: invalid program")

	// ErrUnknownOp is returned for a step whose op is not recognised.
	ErrUnknownOp = errors.New("host: unknown op")
)
