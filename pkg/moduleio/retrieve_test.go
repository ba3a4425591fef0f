package moduleio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/pkg/moduleio"
	"github.com/askiada/go-dockpipe/pkg/ontology"
)

func toRecords(cands []moduleio.Candidate) [][]ontology.Record {
	out := make([][]ontology.Record, len(cands))
	for i, c := range cands {
		out[i] = c
	}
	return out
}

func ensembleManifest(t *testing.T, sizes ...int) *moduleio.Manifest {
	t.Helper()
	dir := t.TempDir()
	m := moduleio.New()
	for i, size := range sizes {
		m.AddOutput(newEnsemble(newModels(t, dir, "mol"+string(rune('A'+i)), size, false)))
	}
	return m
}

func TestRetrieveModelsPairwise(t *testing.T) {
	t.Parallel()

	m := ensembleManifest(t, 3, 3)
	cands, err := m.RetrieveModels(moduleio.Pairwise)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"molA_1.pdb", "molB_1.pdb"},
		{"molA_2.pdb", "molB_2.pdb"},
		{"molA_3.pdb", "molB_3.pdb"},
	}, candidateNames(toRecords(cands)))
}

func TestRetrieveModelsPairwiseMismatch(t *testing.T) {
	t.Parallel()

	m := ensembleManifest(t, 3, 2)
	cands, err := m.RetrieveModels(moduleio.Pairwise)
	assert.ErrorIs(t, err, moduleio.ErrCombination)
	assert.Nil(t, cands)
}

func TestRetrieveModelsCrossDock(t *testing.T) {
	t.Parallel()

	m := ensembleManifest(t, 2, 3)
	cands, err := m.RetrieveModels(moduleio.CrossDock)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"molA_1.pdb", "molB_1.pdb"},
		{"molA_1.pdb", "molB_2.pdb"},
		{"molA_1.pdb", "molB_3.pdb"},
		{"molA_2.pdb", "molB_1.pdb"},
		{"molA_2.pdb", "molB_2.pdb"},
		{"molA_2.pdb", "molB_3.pdb"},
	}, candidateNames(toRecords(cands)))
}

func TestRetrieveModelsIndividualize(t *testing.T) {
	t.Parallel()

	m := ensembleManifest(t, 2, 3)
	cands, err := m.RetrieveModels(moduleio.Individualize)
	require.NoError(t, err)
	require.Len(t, cands, 5)
	for _, cand := range cands {
		assert.Len(t, cand, 1)
		assert.Len(t, cand.Models(), 1)
	}
	assert.Equal(t, "molB_3.pdb", cands[4][0].Meta().FileName)
}

func TestRetrieveModelsPlain(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := moduleio.New()
	m.AddModels(moduleio.Output, newModels(t, dir, "emscoring", 3, false)...)
	m.Add(moduleio.Output, ontology.NewPersistent("emscoring_1.out", ontology.EngineOutput, dir))

	for _, policy := range []moduleio.Policy{moduleio.Pairwise, moduleio.CrossDock, moduleio.Individualize} {
		cands, err := m.RetrieveModels(policy)
		require.NoError(t, err, policy.String())
		assert.Equal(t, [][]string{{"emscoring_1.pdb"}, {"emscoring_2.pdb"}, {"emscoring_3.pdb"}},
			candidateNames(toRecords(cands)), policy.String())
	}
}

func TestRetrieveModelsMixedShapes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := ensembleManifest(t, 2, 2)
	m.AddModels(moduleio.Output, newModels(t, dir, "plain", 1, false)...)

	_, err := m.RetrieveModels(moduleio.Pairwise)
	assert.ErrorIs(t, err, moduleio.ErrCombination)
}

func TestPolicyFromFlags(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		crossdock, individualize bool
		expected                 moduleio.Policy
		err                      error
	}{
		"default":       {expected: moduleio.Pairwise},
		"crossdock":     {crossdock: true, expected: moduleio.CrossDock},
		"individualize": {individualize: true, expected: moduleio.Individualize},
		"both":          {crossdock: true, individualize: true, err: moduleio.ErrPolicyConflict},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := moduleio.PolicyFromFlags(tc.crossdock, tc.individualize)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
