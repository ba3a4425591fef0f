package moduleio

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// Policy selects how ensembles are combined into candidates.
type Policy int

const (
	// Pairwise builds one complex per position: the i-th member of every ensemble.
	Pairwise Policy = iota
	// CrossDock builds every combination of one member per ensemble.
	CrossDock
	// Individualize ignores ensembles and treats every member on its own.
	Individualize
)

func (p Policy) String() string {
	switch p {
	case Pairwise:
		return "pairwise"
	case CrossDock:
		return "crossdock"
	case Individualize:
		return "individualize"
	}
	return "unknown"
}

// PolicyFromFlags maps the crossdock/individualize stage parameters onto a Policy.
func PolicyFromFlags(crossdock, individualize bool) (Policy, error) {
	switch {
	case crossdock && individualize:
		return 0, ErrPolicyConflict
	case crossdock:
		return CrossDock, nil
	case individualize:
		return Individualize, nil
	}
	return Pairwise, nil
}

// Candidate is what the next stage operates on: a single model, or a complex made
// of one record of each ensemble.
type Candidate []ontology.Record

// Models returns the candidate records that are models.
func (c Candidate) Models() []*ontology.Model {
	out := make([]*ontology.Model, 0, len(c))
	for _, rec := range c {
		if model, ok := rec.(*ontology.Model); ok {
			out = append(out, model)
		}
	}
	return out
}

// RetrieveModels builds the candidates of the next stage from the manifest outputs.
//
// Without ensembles, every output record of format PDB is returned on its own,
// whatever the policy. With ensembles, the policy decides how they are combined.
func (m *Manifest) RetrieveModels(policy Policy) ([]Candidate, error) {
	var (
		plain  []Candidate
		groups [][]ontology.Record
	)
	for _, entry := range m.Output {
		if ens, ok := entry.Ensemble(); ok {
			groups = append(groups, ens.Records())
			continue
		}
		rec, ok := entry.Record()
		if ok && rec.Meta().Format == ontology.PDB {
			plain = append(plain, Candidate{rec})
		}
	}

	if len(groups) == 0 {
		return plain, nil
	}
	if len(plain) > 0 {
		return nil, errors.Wrap(ErrCombination, "outputs mix independent models and ensembles")
	}

	switch policy {
	case Pairwise:
		return pairwise(groups)
	case CrossDock:
		return crossProduct(groups), nil
	case Individualize:
		return individualize(groups), nil
	}
	return nil, errors.Errorf("unknown policy %d", policy)
}

func pairwise(groups [][]ontology.Record) ([]Candidate, error) {
	size := len(groups[0])
	for _, group := range groups[1:] {
		if len(group) != size {
			return nil, errors.Wrap(ErrCombination,
				"different number of models in molecules, cannot prepare pairwise complexes")
		}
	}

	out := make([]Candidate, size)
	for i := 0; i < size; i++ {
		cand := make(Candidate, len(groups))
		for g, group := range groups {
			cand[g] = group[i]
		}
		out[i] = cand
	}
	return out, nil
}

func crossProduct(groups [][]ontology.Record) []Candidate {
	out := []Candidate{{}}
	for _, group := range groups {
		next := make([]Candidate, 0, len(out)*len(group))
		for _, prefix := range out {
			for _, rec := range group {
				cand := make(Candidate, len(prefix), len(prefix)+1)
				copy(cand, prefix)
				next = append(next, append(cand, rec))
			}
		}
		out = next
	}
	return out
}

func individualize(groups [][]ontology.Record) []Candidate {
	var out []Candidate
	for _, group := range groups {
		for _, rec := range group {
			out = append(out, Candidate{rec})
		}
	}
	return out
}
