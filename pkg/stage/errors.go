package stage

import "github.com/pkg/errors"

var (
	// ErrFaultyTolerance is returned when more outputs are missing than the configured tolerance.
	ErrFaultyTolerance = errors.New("too many missing outputs")
	// ErrNoOutput is returned when a stage has nothing to work on.
	ErrNoOutput = errors.New("no models to process")
)
