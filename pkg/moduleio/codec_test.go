package moduleio_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/pkg/moduleio"
	"github.com/askiada/go-dockpipe/pkg/ontology"
)

func mixedManifest(t *testing.T, dir string) *moduleio.Manifest {
	t.Helper()
	topoA := ontology.NewTopology("mol1.psf", dir)
	topoB := ontology.NewTopology("mol2.psf", dir)

	m := moduleio.New()
	m.Add(moduleio.Input, topoA, topoB)

	plain := ontology.NewModel("rigidbody_1.pdb", dir, topoA, topoB)
	plain.Score = -42.5
	plain.OriName = "mol1_mol2.pdb"
	clusterID, clusterRank := 3, 1
	plain.ClusterID = &clusterID
	plain.ClusterRank = &clusterRank
	m.Add(moduleio.Output, plain)

	unscored := ontology.NewModel("rigidbody_2.pdb", dir, topoA)
	m.AddModels(moduleio.Output, unscored)

	m.AddOutput(newEnsemble(newModels(t, dir, "mol1", 2, false)))
	m.AddOutput(ontology.EnsembleEntry(ontology.NewEnsemble()))

	clash := ontology.NewModel("rigidbody_3.pdb", dir, topoA)
	clash.Score = math.Inf(1)
	perfect := ontology.NewModel("rigidbody_4.pdb", dir, topoB)
	perfect.Score = math.Inf(-1)
	m.AddModels(moduleio.Output, clash, perfect)
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := mixedManifest(t, dir)

	fpath, err := m.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, moduleio.FileName), fpath)

	loaded, err := moduleio.Load(fpath)
	require.NoError(t, err)

	first, err := os.ReadFile(fpath)
	require.NoError(t, err)
	second, err := loaded.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	require.Len(t, loaded.Input, 2)
	assert.Equal(t, m.Input, loaded.Input)
	require.Len(t, loaded.Output, 6)

	rec, ok := loaded.Output[0].Record()
	require.True(t, ok)
	model, ok := rec.(*ontology.Model)
	require.True(t, ok)
	orig, _ := m.Output[0].Record()
	assert.Equal(t, orig, model)

	rec, ok = loaded.Output[1].Record()
	require.True(t, ok)
	assert.False(t, rec.(*ontology.Model).Scored())

	ens, ok := loaded.Output[2].Ensemble()
	require.True(t, ok)
	origEns, _ := m.Output[2].Ensemble()
	assert.Equal(t, origEns, ens)

	ens, ok = loaded.Output[3].Ensemble()
	require.True(t, ok)
	assert.Zero(t, ens.Len())

	for idx, sign := range map[int]int{4: 1, 5: -1} {
		rec, ok = loaded.Output[idx].Record()
		require.True(t, ok)
		assert.True(t, math.IsInf(rec.(*ontology.Model).Score, sign), "output %d", idx)
	}
}

func TestDecodeVersionOne(t *testing.T) {
	t.Parallel()

	data := `{"schema": "dockpipe.moduleio", "version": 1, "input": [], "output": [{"single": {"type": "ontology.Model", "created": "2024-01-02T03:04:05Z", "file_name": "a.pdb", "file_type": "pdb", "path": "/run/1_rigidbody", "rel_path": "../1_rigidbody/a.pdb", "model": {"score": -3.5, "topology": [], "ori_name": null, "clt_id": null, "clt_rank": null, "clt_model_rank": null}}}]}`

	m, err := moduleio.Decode([]byte(data))
	require.NoError(t, err)
	models := m.OutputModels()
	require.Len(t, models, 1)
	assert.InDelta(t, -3.5, models[0].Score, 0)
}

func TestEncodeEmptyEntry(t *testing.T) {
	t.Parallel()

	tcs := map[string]func(m *moduleio.Manifest){
		"zero entry": func(m *moduleio.Manifest) {
			m.AddOutput(ontology.Entry{})
		},
		"nil single": func(m *moduleio.Manifest) {
			m.AddOutput(ontology.Single(nil))
		},
		"nil model": func(m *moduleio.Manifest) {
			m.AddModels(moduleio.Output, nil)
		},
		"nil input": func(m *moduleio.Manifest) {
			m.Add(moduleio.Input, (*ontology.Persistent)(nil))
		},
		"nil ensemble member": func(m *moduleio.Manifest) {
			m.AddOutput(ontology.EnsembleEntry(ontology.NewEnsemble(ontology.Member{Key: "0"})))
		},
	}

	for name, add := range tcs {
		add := add
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := moduleio.New()
			add(m)
			_, err := m.Encode()
			assert.ErrorIs(t, err, moduleio.ErrEmptyRecord)

			_, err = m.Save(t.TempDir())
			assert.ErrorIs(t, err, moduleio.ErrEmptyRecord)
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	t.Parallel()

	m := mixedManifest(t, t.TempDir())
	first, err := m.Encode()
	require.NoError(t, err)
	second, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `"schema": "dockpipe.moduleio"`)
	assert.Contains(t, string(first), `"type": "ontology.Model"`)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	validRecord := `{"type": "ontology.Persistent", "created": "2024-01-02T03:04:05Z", "file_name": "a.psf", "file_type": "psf", "path": "/run/0_topoaa", "rel_path": "../0_topoaa/a.psf"}`

	tcs := map[string]string{
		"not json":        `{`,
		"unknown field":   `{"schema": "dockpipe.moduleio", "version": 1, "input": [], "output": [], "extra": 1}`,
		"wrong schema":    `{"schema": "other", "version": 1, "input": [], "output": []}`,
		"wrong version":   `{"schema": "dockpipe.moduleio", "version": 3, "input": [], "output": []}`,
		"version zero":    `{"schema": "dockpipe.moduleio", "version": 0, "input": [], "output": []}`,
		"bad score_inf":   `{"schema": "dockpipe.moduleio", "version": 2, "input": [], "output": [{"single": {"type": "ontology.Model", "created": "2024-01-02T03:04:05Z", "file_name": "a", "file_type": "pdb", "path": "", "rel_path": "", "model": {"score": null, "score_inf": "Inf", "topology": [], "ori_name": null, "clt_id": null, "clt_rank": null, "clt_model_rank": null}}}]}`,
		"score and inf":   `{"schema": "dockpipe.moduleio", "version": 2, "input": [], "output": [{"single": {"type": "ontology.Model", "created": "2024-01-02T03:04:05Z", "file_name": "a", "file_type": "pdb", "path": "", "rel_path": "", "model": {"score": 1.5, "score_inf": "+Inf", "topology": [], "ori_name": null, "clt_id": null, "clt_rank": null, "clt_model_rank": null}}}]}`,
		"unknown type":    `{"schema": "dockpipe.moduleio", "version": 1, "input": [{"type": "x", "created": "2024-01-02T03:04:05Z", "file_name": "a", "file_type": "pdb", "path": "", "rel_path": ""}], "output": []}`,
		"bad format":      `{"schema": "dockpipe.moduleio", "version": 1, "input": [{"type": "ontology.Persistent", "created": "2024-01-02T03:04:05Z", "file_name": "a", "file_type": "doc", "path": "", "rel_path": ""}], "output": []}`,
		"bad created":     `{"schema": "dockpipe.moduleio", "version": 1, "input": [{"type": "ontology.Persistent", "created": "yesterday", "file_name": "a", "file_type": "pdb", "path": "", "rel_path": ""}], "output": []}`,
		"model no fields": `{"schema": "dockpipe.moduleio", "version": 1, "input": [], "output": [{"single": {"type": "ontology.Model", "created": "2024-01-02T03:04:05Z", "file_name": "a", "file_type": "pdb", "path": "", "rel_path": ""}}]}`,
		"empty entry":     `{"schema": "dockpipe.moduleio", "version": 1, "input": [], "output": [{}]}`,
		"both shapes":     `{"schema": "dockpipe.moduleio", "version": 1, "input": [], "output": [{"single": ` + validRecord + `, "ensemble": []}]}`,
		"duplicated key":  `{"schema": "dockpipe.moduleio", "version": 1, "input": [], "output": [{"ensemble": [{"key": "0", "record": ` + validRecord + `}, {"key": "0", "record": ` + validRecord + `}]}]}`,
	}

	for name, data := range tcs {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := moduleio.Decode([]byte(data))
			assert.ErrorIs(t, err, moduleio.ErrDeserialization)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := moduleio.Load(filepath.Join(t.TempDir(), moduleio.FileName))
	require.Error(t, err)
	assert.NotErrorIs(t, err, moduleio.ErrDeserialization)
}
