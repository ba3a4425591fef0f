package traceback

import "github.com/pkg/errors"

var (
	// ErrNoSteps is returned when a run directory has no step producing models.
	ErrNoSteps = errors.New("no step to trace back")
	// ErrManifestMissing is returned when a step folder has no manifest.
	ErrManifestMissing = errors.New("step manifest missing")
)
