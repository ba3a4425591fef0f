// Package drawer renders a directed graph of named vertices as a Graphviz DOT file.
// It draws the steps of a pipeline, and any other string keyed graph such as the
// lineage of models across the stages of a run.
package drawer

import (
	"time"

	"github.com/askiada/go-dockpipe/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a graph.
type Drawer interface {
	// AddStep adds a vertex.
	AddStep(stepName string) error
	// AddLink adds an edge between parent and children vertices.
	AddLink(parentStepName, childrenStepName string) error
	// SetAttribute sets a DOT attribute of a vertex.
	SetAttribute(stepName, key, value string) error
	// Draw creates the file with the graph.
	Draw() error
	// SetTotalTime labels the vertex with the time elapsed since startTime.
	SetTotalTime(stepName string, startTime time.Time) error
	// AddMeasure labels vertices and colours edges with the measured durations.
	AddMeasure(measure measure.Measure) error
}
