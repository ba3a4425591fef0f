package moduleio_test

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/pkg/ontology"
)

func newModels(t *testing.T, dir, prefix string, total int, create bool) []*ontology.Model {
	t.Helper()
	models := make([]*ontology.Model, total)
	for i := range models {
		models[i] = ontology.NewModel(prefix+"_"+strconv.Itoa(i+1)+".pdb", dir)
		models[i].Score = float64(-i)
		if create {
			require.NoError(t, os.WriteFile(models[i].FullName(), []byte("ATOM\n"), 0o600))
		}
	}
	return models
}

func newEnsemble(models []*ontology.Model) ontology.Entry {
	ens := ontology.NewEnsemble()
	for i, m := range models {
		ens.Set(strconv.Itoa(i), m)
	}
	return ontology.EnsembleEntry(ens)
}

func candidateNames(cands [][]ontology.Record) [][]string {
	out := make([][]string, len(cands))
	for i, cand := range cands {
		for _, rec := range cand {
			out[i] = append(out[i], rec.Meta().FileName)
		}
	}
	return out
}
