package moduleio

import (
	"fmt"
	"strings"

	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// FileName is the name of the manifest file in a stage directory.
const FileName = "io.json"

// Direction selects the side of the manifest a record is added to.
type Direction int

const (
	Input Direction = iota
	Output
)

// Manifest holds what a stage consumed and produced.
type Manifest struct {
	Input  []ontology.Record
	Output []ontology.Entry
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{}
}

// Add appends records to the given side. Outputs are added as single entries.
func (m *Manifest) Add(dir Direction, records ...ontology.Record) {
	for _, rec := range records {
		if dir == Input {
			m.Input = append(m.Input, rec)
			continue
		}
		m.Output = append(m.Output, ontology.Single(rec))
	}
}

// AddModels is Add for a list of models.
func (m *Manifest) AddModels(dir Direction, models ...*ontology.Model) {
	for _, model := range models {
		m.Add(dir, model)
	}
}

// AddOutput appends already built entries, ensembles included.
func (m *Manifest) AddOutput(entries ...ontology.Entry) {
	m.Output = append(m.Output, entries...)
}

// OutputRecords returns every output record, ensembles flattened.
func (m *Manifest) OutputRecords() []ontology.Record {
	var out []ontology.Record
	for _, entry := range m.Output {
		out = append(out, entry.Records()...)
	}
	return out
}

// OutputModels returns the output records that are models, ensembles flattened.
func (m *Manifest) OutputModels() []*ontology.Model {
	var out []*ontology.Model
	for _, rec := range m.OutputRecords() {
		if model, ok := rec.(*ontology.Model); ok {
			out = append(out, model)
		}
	}
	return out
}

func (m *Manifest) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Input: %v\n", m.Input)
	sb.WriteString("Output: [")
	for i, entry := range m.Output {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%v", entry.Records())
	}
	sb.WriteString("]")
	return sb.String()
}
