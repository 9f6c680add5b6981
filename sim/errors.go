package sim

import "errors"

var (
	// ErrInvalidArgument is returned for out-of-range indices and malformed inputs.
	ErrInvalidArgument = errors.New("sim: invalid argument")

	// ErrNoPointMasses is returned by queries that are undefined on an empty point-mass set.
	ErrNoPointMasses = errors.New("sim: no point masses")

	// ErrCorruptRemap is returned when a remap table references a point mass that does not exist.
	ErrCorruptRemap = errors.New("sim: remap index out of range")
)
