package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.ModeLocal, cfg.Engine.Mode)
	assert.GreaterOrEqual(t, cfg.Engine.NCores, 1)
	assert.Equal(t, 100, cfg.Engine.Batch.QueueLimit)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
tolerance = 20
engine {
  mode        = "batch"
  ncores      = 2
  timeout     = "90s"
  executables = ["cns"]
  env         = { CNS_SOLVE = "/opt/cns" }
  batch {
    poll_interval = "2s"
    queue_limit   = 7
  }
}
`)

	cfg, err := config.Load(context.Background(), path)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, cfg.Tolerance, 0)
	assert.Equal(t, config.ModeBatch, cfg.Engine.Mode)
	assert.Equal(t, 2, cfg.Engine.NCores)
	assert.Equal(t, 90*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, []string{"cns"}, cfg.Engine.Executables)
	assert.Equal(t, map[string]string{"CNS_SOLVE": "/opt/cns"}, cfg.Engine.Env)
	assert.Equal(t, 2*time.Second, cfg.Engine.Batch.PollInterval)
	assert.Equal(t, 7, cfg.Engine.Batch.QueueLimit)
	// untouched values keep their defaults
	assert.Equal(t, []string{"sbatch", "--parsable"}, cfg.Engine.Batch.Submit)
}

func TestLoadOnlyTolerance(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(context.Background(), writeConfig(t, "tolerance = 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Tolerance)
	assert.Equal(t, config.Default().Engine, cfg.Engine)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		content string
		invalid bool
	}{
		"syntax":          {content: "tolerance = "},
		"unknown field":   {content: "verbose = true\n"},
		"tolerance range": {content: "tolerance = 101\n", invalid: true},
		"unknown mode":    {content: "engine {\n  mode = \"cloud\"\n}\n", invalid: true},
		"zero cores":      {content: "engine {\n  ncores = 0\n}\n", invalid: true},
		"bad timeout":     {content: "engine {\n  timeout = \"soon\"\n}\n", invalid: true},
		"bad queue limit": {content: "engine {\n  mode = \"batch\"\n  batch {\n    queue_limit = 0\n  }\n}\n", invalid: true},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(context.Background(), writeConfig(t, tc.content))
			require.Error(t, err)
			if tc.invalid {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
