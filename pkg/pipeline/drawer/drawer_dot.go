package drawer

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-dockpipe/pkg/pipeline/measure"
)

// DOTDrawer writes a graph in the DOT language.
type DOTDrawer struct {
	graph    graph.Graph[string, string]
	fileName string
}

// NewDOTDrawer creates a drawer backed by an in-memory directed graph.
func NewDOTDrawer(fileName string) *DOTDrawer {
	return NewDOTDrawerWithGraph(fileName, graph.New(graph.StringHash, graph.Directed()))
}

// NewDOTDrawerWithGraph creates a drawer on top of an existing graph.
func NewDOTDrawerWithGraph(fileName string, gra graph.Graph[string, string]) *DOTDrawer {
	return &DOTDrawer{
		fileName: fileName,
		graph:    gra,
	}
}

// Graph returns the graph being drawn.
func (d *DOTDrawer) Graph() graph.Graph[string, string] {
	return d.graph
}

// AddStep adds a vertex. Adding an existing vertex is a no-op.
func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds an edge between parent and children vertices.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// SetAttribute sets a DOT attribute of a vertex.
func (d *DOTDrawer) SetAttribute(name, key, value string) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if err != nil {
		return errors.Wrapf(err, "unable to get vertex %s", name)
	}

	properties.Attributes[key] = value

	return nil
}

// Draw writes the graph to the file of the drawer.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = d.Write(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.fileName)
	}

	return file.Close()
}

// Write renders the graph to wrt. Vertices and edges are sorted so the output is stable.
func (d *DOTDrawer) Write(wrt io.Writer) error {
	return writeDOT(d.graph, wrt)
}

// SetTotalTime labels the vertex with the time elapsed since startTime.
func (d *DOTDrawer) SetTotalTime(stepName string, startTime time.Time) error {
	return d.SetAttribute(stepName, "xlabel", time.Since(startTime).String())
}

const maxRGB = 240

// Gradient returns the hex colour of fraction on a blue (0) to red (1) scale.
func Gradient(fraction float64) (string, error) {
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	color, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return color.ToHEX().String(), nil
}

// AddMeasure labels every measured vertex with its average duration and the
// edges with the average wait of the consumer. Edge colours go from blue for the
// shortest wait to red for the longest.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()

	var shortest, longest time.Duration
	first := true
	for _, mt := range metrics {
		for _, waited := range mt.AverageWaits() {
			if waited == 0 {
				continue
			}
			if first || waited < shortest {
				shortest = waited
			}
			if first || waited > longest {
				longest = waited
			}
			first = false
		}
	}

	for name, mt := range metrics {
		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			return errors.Wrapf(err, "unable to get vertex %s", name)
		}

		if avg := mt.Average(); avg != 0 {
			properties.Attributes["xlabel"] = avg.String()
		}
		if total := mt.Total(); total > 0 {
			properties.Attributes["xlabel"] += ", end: " + total.String()
		}

		for from, waited := range mt.AverageWaits() {
			if waited == 0 {
				continue
			}

			fraction := 1.0
			if longest > shortest {
				fraction = float64(waited-shortest) / float64(longest-shortest)
			}
			color, err := Gradient(fraction)
			if err != nil {
				return err
			}

			err = d.graph.UpdateEdge(from, name,
				graph.EdgeAttribute("label", waited.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", color),
			)
			if err != nil {
				return errors.Wrapf(err, "unable to label edge %s -> %s", from, name)
			}
		}
	}

	return nil
}

// writeDOT renders gra as a strict DOT graph. Vertices and edges are sorted by
// name. A vertex xlabel is rendered as a second line of its label.
func writeDOT(gra graph.Graph[string, string], wrt io.Writer) error {
	adjacency, err := gra.AdjacencyMap()
	if err != nil {
		return errors.Wrap(err, "unable to get adjacency map")
	}

	kind, operator := "graph", "--"
	if gra.Traits().IsDirected {
		kind, operator = "digraph", "->"
	}

	buf := bufio.NewWriter(wrt)
	fmt.Fprintf(buf, "strict %s {\n", kind)
	for _, vertex := range slices.Sorted(maps.Keys(adjacency)) {
		_, props, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return errors.Wrapf(err, "unable to get vertex %s", vertex)
		}
		fmt.Fprintf(buf, "\t%s [ %sweight=%d ];\n", quoteID(vertex), vertexAttributes(vertex, props.Attributes), props.Weight)

		for _, target := range slices.Sorted(maps.Keys(adjacency[vertex])) {
			edge := adjacency[vertex][target]
			fmt.Fprintf(buf, "\t%s %s %s [ %sweight=%d ];\n",
				quoteID(vertex), operator, quoteID(target), quotedAttributes(edge.Properties.Attributes), edge.Properties.Weight)
		}
	}
	buf.WriteString("}\n")

	return errors.Wrap(buf.Flush(), "unable to write dot graph")
}

func vertexAttributes(vertex string, attributes map[string]string) string {
	xlabel, ok := attributes["xlabel"]
	if !ok {
		return quotedAttributes(attributes)
	}

	rest := make(map[string]string, len(attributes))
	for k, v := range attributes {
		if k != "xlabel" {
			rest[k] = v
		}
	}

	return fmt.Sprintf(`label=<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>, `,
		html.EscapeString(vertex), html.EscapeString(xlabel)) + quotedAttributes(rest)
}

// quoteID renders a vertex name as a DOT double-quoted string.
func quoteID(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
}

func quotedAttributes(attributes map[string]string) string {
	var out strings.Builder
	for _, k := range slices.Sorted(maps.Keys(attributes)) {
		fmt.Fprintf(&out, "%s=%q, ", k, attributes[k])
	}

	return out.String()
}

var _ Drawer = (*DOTDrawer)(nil)
