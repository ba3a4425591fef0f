package traceback_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/pkg/moduleio"
	"github.com/askiada/go-dockpipe/pkg/ontology"
	"github.com/askiada/go-dockpipe/pkg/traceback"
)

func newModel(dir, name, oriName string, score float64, topologies ...string) *ontology.Model {
	topos := make([]*ontology.Persistent, len(topologies))
	for i, topo := range topologies {
		topos[i] = ontology.NewTopology(topo, dir)
	}
	model := ontology.NewModel(name, dir, topos...)
	model.OriName = oriName
	model.Score = score

	return model
}

// threeStages is a run where rigidbody produces three models, flexref keeps
// the first and the third one, and emscoring only keeps the first one.
func threeStages(dir func(string) string) []traceback.Stage {
	rigid := dir("1_rigidbody")
	flex := dir("2_flexref")
	em := dir("3_emscoring")

	return []traceback.Stage{
		{Name: "1_rigidbody", Models: []*ontology.Model{
			newModel(rigid, "rigidbody_1.pdb", "", -10, "t1.psf", "t2.psf"),
			newModel(rigid, "rigidbody_2.pdb", "", -20, "t1.psf", "t2.psf"),
			newModel(rigid, "rigidbody_3.pdb", "", -5, "t1.psf", "t2.psf"),
		}},
		{Name: "2_flexref", Models: []*ontology.Model{
			newModel(flex, "flexref_1.pdb", "rigidbody_1.pdb", -3),
			newModel(flex, "flexref_2.pdb", "rigidbody_3.pdb", -8),
		}},
		{Name: "3_emscoring", Models: []*ontology.Model{
			newModel(em, "emscoring_1.pdb", "flexref_1.pdb", -1),
		}},
	}
}

func fixedDir(name string) string {
	return filepath.Join("/run", name)
}

const threeStagesTSV = "00_topo1\t00_topo2\t1_rigidbody\t1_rigidbody_rank\t2_flexref\t2_flexref_rank\t3_emscoring\t3_emscoring_rank\n" +
	"t1.psf\tt2.psf\trigidbody_1.pdb\t2\tflexref_1.pdb\t2\temscoring_1.pdb\t1\n" +
	"t1.psf\tt2.psf\trigidbody_3.pdb\t3\tflexref_2.pdb\t1\t-\t-\n" +
	"t1.psf\tt2.psf\trigidbody_2.pdb\t1\t-\t-\t-\t-\n"

// writeRun persists the manifests of stages in runDir, next to analysis
// steps that have no manifest.
func writeRun(t *testing.T, runDir string, stages func(func(string) string) []traceback.Stage) {
	t.Helper()

	dir := func(name string) string {
		return filepath.Join(runDir, name)
	}

	for _, analysis := range []string{"0_topoaa", "4_caprieval"} {
		require.NoError(t, os.MkdirAll(dir(analysis), 0o755))
	}

	for _, stage := range stages(dir) {
		require.NoError(t, os.MkdirAll(dir(stage.Name), 0o755))
		manifest := moduleio.New()
		manifest.AddModels(moduleio.Output, stage.Models...)
		_, err := manifest.Save(dir(stage.Name))
		require.NoError(t, err)
	}
}
