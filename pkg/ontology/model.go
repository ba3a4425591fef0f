package ontology

import (
	"math"
)

// Model is a structural model produced by a stage.
type Model struct {
	Persistent
	// Score is NaN until a scoring stage computes it. Lower is better.
	Score float64
	// Topology lists the topologies the model was built from.
	Topology []*Persistent
	// OriName is the file name of the model this one was derived from, empty when unknown.
	OriName string

	ClusterID        *int
	ClusterRank      *int
	ClusterModelRank *int
}

// NewModel creates a model record with a NaN score.
func NewModel(fileName, path string, topology ...*Persistent) *Model {
	return &Model{
		Persistent: *NewPersistent(fileName, PDB, path),
		Score:      math.NaN(),
		Topology:   topology,
	}
}

// Scored reports whether a score has been computed.
func (m *Model) Scored() bool {
	return !math.IsNaN(m.Score)
}

// Less orders models by ascending score, unscored models last.
func (m *Model) Less(other *Model) bool {
	switch {
	case !m.Scored():
		return false
	case !other.Scored():
		return true
	}
	return m.Score < other.Score
}

// TopologyNames returns the file names of the originating topologies.
func (m *Model) TopologyNames() []string {
	names := make([]string, len(m.Topology))
	for i, topo := range m.Topology {
		names[i] = topo.FileName
	}
	return names
}

var _ Record = (*Model)(nil)
