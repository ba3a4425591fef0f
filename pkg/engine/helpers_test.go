package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/internal/config"
	"github.com/askiada/go-dockpipe/pkg/engine"
)

func localConfig(ncores int) config.Engine {
	cfg := config.Default().Engine
	cfg.NCores = ncores

	return cfg
}

func shellJob(t *testing.T, name, script string) *engine.Job {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	return &engine.Job{
		Name:           name,
		Command:        []string{"sh", "-c", script},
		Dir:            dir,
		ExpectedOutput: name + ".out",
	}
}

func readOutput(t *testing.T, job *engine.Job) string {
	t.Helper()

	content, err := os.ReadFile(job.OutputPath())
	require.NoError(t, err)

	return string(content)
}
