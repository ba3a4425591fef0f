package ontology

import (
	"github.com/pkg/errors"
)

// Format is the logical type of a persistent file.
type Format int

const (
	PDB Format = iota
	Topology
	EngineInput
	EngineOutput
)

var formatNames = map[Format]string{
	PDB:          "pdb",
	Topology:     "psf",
	EngineInput:  "inp",
	EngineOutput: "out",
}

var ErrUnknownFormat = errors.New("unknown format")

// String renders the format as the file extension it stands for.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat is the inverse of String.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownFormat, "%q", s)
}
