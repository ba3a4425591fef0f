package stage_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/pkg/moduleio"
	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// energyPDB is a model whose score with DefaultWeights is -21.5 - 10*(k-1).
func energyPDB(k int) string {
	return fmt.Sprintf("REMARK energies: 0, 0, 0, 0, 0, %d, -50, 5\n"+
		"REMARK Desolvation energy: -2\n"+
		"REMARK buried surface area: 100\n"+
		"ATOM      1  N   ALA A   1      11.104   6.134  -6.504  1.00  0.00           N\n", -10*k)
}

// previousStage writes total models and the manifest of stage dir, skipping
// the files listed in missing.
func previousStage(t *testing.T, dir, prefix string, total int, missing ...int) []*ontology.Model {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	skip := map[int]bool{}
	for _, k := range missing {
		skip[k] = true
	}

	topology := ontology.NewTopology("e2a-hpr.psf", dir)
	models := make([]*ontology.Model, total)
	for i := range models {
		k := i + 1
		models[i] = ontology.NewModel(fmt.Sprintf("%s_%d.pdb", prefix, k), dir, topology)
		models[i].Score = float64(k)
		if !skip[k] {
			require.NoError(t, os.WriteFile(filepath.Join(dir, models[i].FileName), []byte(energyPDB(k)), 0o600))
		}
	}

	manifest := moduleio.New()
	manifest.AddModels(moduleio.Output, models...)
	_, err := manifest.Save(dir)
	require.NoError(t, err)

	return models
}
