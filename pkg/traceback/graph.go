package traceback

import (
	"strconv"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/store"
	"github.com/askiada/go-dockpipe/pkg/pipeline/drawer"
)

// vertexName identifies a model of a stage in the lineage graph.
func vertexName(stage, model string) string {
	return stage + "/" + model
}

// LineageGraph draws the ancestry held by table into fileName: every topology
// and every model is a vertex, every model points to its descendants. Models
// are coloured by rank within their stage, from blue for the best to red for
// the worst. Vertices without parents are drawn as boxes.
func LineageGraph(fileName string, stages []Stage, table *Table) (*drawer.DOTDrawer, error) {
	st := store.NewMemoryStore[string, string]()
	d := drawer.NewDOTDrawerWithGraph(fileName, graph.NewWithStore(graph.StringHash, st, graph.Directed(), graph.PreventCycles()))

	maxRanks := make(map[string]int, len(stages))
	for _, stage := range stages {
		maxRanks[stage.Name] = len(stage.Models)
	}

	topologyColumns := []string{}
	for _, col := range table.Columns {
		if _, ok := maxRanks[col]; !ok && strings.HasPrefix(col, topologyPrefix) {
			topologyColumns = append(topologyColumns, col)
		}
	}

	for row := range table.Rows {
		parents := []string{}
		for _, col := range topologyColumns {
			name, _ := table.Value(row, col)
			if name == "" {
				continue
			}
			err := d.AddStep(name)
			if err != nil {
				return nil, err
			}
			parents = append(parents, name)
		}

		for _, stage := range stages {
			name, _ := table.Value(row, stage.Name)
			if name == "" || name == Absent {
				// the chain restarts at the next stage the lineage reached
				parents = nil
				continue
			}

			vertex := vertexName(stage.Name, name)
			err := d.AddStep(vertex)
			if err != nil {
				return nil, err
			}

			rank, _ := table.Value(row, RankColumn(stage.Name))
			err = colourByRank(st, vertex, rank, maxRanks[stage.Name])
			if err != nil {
				return nil, err
			}

			for _, parent := range parents {
				err = d.AddLink(parent, vertex)
				if err != nil {
					return nil, err
				}
			}
			parents = []string{vertex}
		}
	}

	// roots are the topologies, plus the models whose parents were not traced
	roots, err := st.Sources()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list lineage roots")
	}
	for _, root := range roots {
		err = st.UpdateVertex(root, graph.VertexAttribute("shape", "box"))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to update vertex %s", root)
		}
	}

	return d, nil
}

func colourByRank(st *store.MemoryStore[string, string], vertex, rank string, maxRank int) error {
	value, err := strconv.Atoi(rank)
	if err != nil {
		return nil //nolint:nilerr // unranked vertices keep the default colour
	}

	fraction := 0.0
	if maxRank > 1 {
		fraction = float64(value-1) / float64(maxRank-1)
	}

	colour, err := drawer.Gradient(fraction)
	if err != nil {
		return err
	}

	err = st.UpdateVertex(vertex,
		graph.VertexAttribute("color", colour),
		graph.VertexAttribute("xlabel", "rank "+rank),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to update vertex %s", vertex)
	}

	return nil
}
