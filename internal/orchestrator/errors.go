package orchestrator

import "errors"

var (
	// ErrUnknownKind is returned when a generator kind is not registered
	// in the orchestrator's family. The previous kind stays active.
	ErrUnknownKind = errors.New("unknown generator kind")

	// ErrInvalidParameter is returned for unknown parameter names and
	// out-of-range values. The previous value stays active.
	ErrInvalidParameter = errors.New("invalid parameter")
)
