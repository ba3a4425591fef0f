package engine

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// waitDelay bounds the wait for the output pipes once the process is killed.
const waitDelay = time.Second

// Local runs jobs as child processes of the current process.
type Local struct {
	ncores int
}

// NewLocal creates a backend running at most ncores jobs at the same time.
func NewLocal(ncores int) *Local {
	if ncores < 1 {
		ncores = 1
	}

	return &Local{ncores: ncores}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Concurrency() int { return l.ncores }

func (l *Local) Executables() []string { return nil }

// Execute runs the command of job in its directory. The process is killed when
// ctx is done.
func (l *Local) Execute(ctx context.Context, job *Job, env []string) Result {
	cmd := exec.CommandContext(ctx, job.Command[0], job.Command[1:]...)
	cmd.Dir = job.Dir
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if err != nil {
		return Result{
			Status: Failed,
			Err:    errors.Wrapf(err, "%s: %s", job.Command[0], lastLine(output.String())),
		}
	}

	return Result{Status: Completed}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Backend = (*Local)(nil)
