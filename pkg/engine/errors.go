package engine

import "github.com/pkg/errors"

var (
	// ErrThirdPartyInstallation is returned when an executable needed by the jobs is not installed.
	ErrThirdPartyInstallation = errors.New("third party installation missing")
	// ErrUnknownMode is returned when no backend matches the configured mode.
	ErrUnknownMode = errors.New("unknown engine mode")
	// ErrBackend is returned when the backend cannot be reached.
	ErrBackend = errors.New("backend failure")
	// ErrNoJobs is returned when Dispatch is called without jobs.
	ErrNoJobs = errors.New("no jobs to dispatch")
)
