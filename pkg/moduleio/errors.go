package moduleio

import "github.com/pkg/errors"

var (
	ErrDeserialization  = errors.New("manifest does not match the expected schema")
	ErrCombination      = errors.New("cannot combine ensembles")
	ErrEmptyExpectation = errors.New("no expected output was passed to the manifest")
	ErrPolicyConflict   = errors.New("crossdock and individualize cannot both be set")
	ErrEmptyRecord      = errors.New("manifest entry holds no record")
)
