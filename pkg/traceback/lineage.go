package traceback

import (
	"strconv"

	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// Absent marks a stage a lineage did not reach.
const Absent = "-"

const unknownPrefix = "unk"

// Stage is the output of one traced step.
type Stage struct {
	// Name is the step folder name, for instance 2_flexref.
	Name   string
	Models []*ontology.Model
}

// Lineage is the ancestry of one model class, most recent stage first.
type Lineage struct {
	// Key is the name of the model in the last stage, or unk<i> when the
	// lineage was dropped before the last stage.
	Key string
	// Ancestors holds the name of the ancestor in every stage before the last
	// one, most recent first, followed by the topology names.
	Ancestors []string
	// Ranks holds the rank in every stage, the last stage first.
	Ranks []string

	dropped bool
}

// Unknown reports whether the lineage was dropped before the last stage.
func (l *Lineage) Unknown() bool {
	return l.dropped
}

func absent(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = Absent
	}

	return out
}

// Reconstruct walks stages from the last to the first and returns the
// lineages, the ones of the last stage first, and the largest number of
// topologies a model of the first stage was built from.
func Reconstruct(stages []Stage) ([]*Lineage, int) {
	last := len(stages) - 1
	lineages := []*Lineage{}
	unknown, maxTopologies := 0, 0

	for n := last; n >= 0; n-- {
		// number of stages walked back so far
		delta := last - n
		models := stages[n].Models
		ranks := ontology.Ranks(models)

		// lineages reaching stage n, by the name of their ancestor in stage n
		reached := map[string][]*Lineage{}
		for _, lin := range lineages {
			if n != last && len(lin.Ranks) == delta {
				name := lin.Ancestors[delta-1]
				reached[name] = append(reached[name], lin)
			}
		}

		for i, model := range models {
			rank := strconv.Itoa(ranks[i])

			var ancestors []string
			if n == 0 {
				ancestors = model.TopologyNames()
				if len(ancestors) > maxTopologies {
					maxTopologies = len(ancestors)
				}
			} else {
				ancestors = []string{model.OriName}
			}

			if n == last {
				lineages = append(lineages, &Lineage{
					Key:       model.FileName,
					Ancestors: ancestors,
					Ranks:     []string{rank},
				})

				continue
			}

			var targets []*Lineage
			for _, lin := range reached[model.FileName] {
				// a model name seen twice in one stage extends its lineages once
				if len(lin.Ranks) == delta {
					targets = append(targets, lin)
				}
			}

			if len(targets) == 0 {
				lin := &Lineage{
					Key:       unknownPrefix + strconv.Itoa(unknown),
					Ancestors: append(absent(delta-1), model.FileName),
					Ranks:     absent(delta),
					dropped:   true,
				}
				unknown++
				lineages = append(lineages, lin)
				targets = []*Lineage{lin}
			}

			for _, lin := range targets {
				lin.Ancestors = append(lin.Ancestors, ancestors...)
				lin.Ranks = append(lin.Ranks, rank)
			}
		}
	}

	return lineages, maxTopologies
}
