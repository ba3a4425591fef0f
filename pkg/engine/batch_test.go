package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-dockpipe/internal/config"
	"github.com/askiada/go-dockpipe/pkg/engine"
)

// batchConfig runs the job script synchronously at submission and reports the
// job as finished on the first poll.
func batchConfig() config.Engine {
	cfg := config.Default().Engine
	cfg.Mode = config.ModeBatch
	cfg.Batch = config.Batch{
		Submit:       []string{"sh", "-c", `sh "$0" >/dev/null 2>&1; echo '4242;cluster'`},
		Status:       []string{"sh", "-c", "exit 1"},
		PollInterval: 10 * time.Millisecond,
		QueueLimit:   2,
	}

	return cfg
}

func TestDispatchBatch(t *testing.T) {
	t.Parallel()

	job := shellJob(t, "scored", `printf '%s' "$MODEL" > scored.out`)
	job.Env = map[string]string{"MODEL": "it's model_1"}
	failing := shellJob(t, "failing", "exit 1")

	eng, err := engine.New(batchConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "sh"}, eng.Backend().Executables())
	assert.NoError(t, eng.CheckInstalled())

	report, err := eng.Dispatch(context.Background(), []*engine.Job{job, failing})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, engine.Completed, report.Results[0].Status)
	assert.True(t, report.Results[0].Materialized)
	assert.Equal(t, "it's model_1", readOutput(t, job))

	// the scheduler accepted the job, only the missing output tells it failed
	assert.Equal(t, engine.Completed, report.Results[1].Status)
	assert.False(t, report.Results[1].Materialized)

	script, err := os.ReadFile(filepath.Join(job.Dir, "scored.job"))
	require.NoError(t, err)
	assert.Contains(t, string(script), `export MODEL='it'\''s model_1'`)
	assert.Contains(t, string(script), "exec 'sh' '-c'")
}

func TestDispatchBatchStillQueued(t *testing.T) {
	t.Parallel()

	cfg := batchConfig()
	cfg.Batch.Status = []string{"echo"}
	cfg.Timeout = 100 * time.Millisecond

	eng, err := engine.New(cfg)
	require.NoError(t, err)

	report, err := eng.Dispatch(context.Background(), []*engine.Job{shellJob(t, "queued", "true")})
	require.NoError(t, err)
	assert.Equal(t, engine.TimedOut, report.Results[0].Status)
}

func TestDispatchBatchUnreachableScheduler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		submit   []string
		contains string
	}{
		"submit fails": {
			submit:   []string{"sh", "-c", "echo 'unable to contact slurm controller' >&2; exit 1"},
			contains: "unable to contact slurm controller",
		},
		"no job id": {
			submit:   []string{"true"},
			contains: "no job id returned",
		},
		"no submit command": {
			submit:   nil,
			contains: "submit and status commands must be set",
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := batchConfig()
			cfg.Batch.Submit = tc.submit

			eng, err := engine.New(cfg)
			require.NoError(t, err)

			jobs := []*engine.Job{shellJob(t, "rejected_1", "true"), shellJob(t, "rejected_2", "true")}
			report, err := eng.Dispatch(context.Background(), jobs)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, engine.ErrBackend)
			assert.ErrorContains(t, err, tc.contains)
		})
	}
}
