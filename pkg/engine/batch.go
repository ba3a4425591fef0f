package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/config"
	"github.com/askiada/go-dockpipe/internal/ctxlog"
)

// Batch submits every job as a shell script to an external scheduler and
// polls the scheduler until the job left the queue.
type Batch struct {
	cfg config.Batch
}

// NewBatch creates a backend submitting with cfg.Submit and polling with cfg.Status.
func NewBatch(cfg config.Batch) *Batch {
	return &Batch{cfg: cfg}
}

func (b *Batch) Name() string { return "batch" }

// Concurrency is the queue limit: the number of jobs submitted and not yet finished.
func (b *Batch) Concurrency() int {
	if b.cfg.QueueLimit < 1 {
		return 1
	}

	return b.cfg.QueueLimit
}

func (b *Batch) Executables() []string {
	var out []string
	if len(b.cfg.Submit) > 0 {
		out = append(out, b.cfg.Submit[0])
	}
	if len(b.cfg.Status) > 0 {
		out = append(out, b.cfg.Status[0])
	}

	return out
}

// Execute writes the job script, submits it and waits until the scheduler no
// longer knows the job or ctx is done.
func (b *Batch) Execute(ctx context.Context, job *Job, env []string) Result {
	if len(b.cfg.Submit) == 0 || len(b.cfg.Status) == 0 {
		return Result{Status: Failed, Err: errors.Wrap(ErrBackend, "submit and status commands must be set")}
	}

	script, err := writeJobScript(job)
	if err != nil {
		return Result{Status: Failed, Err: err}
	}

	schedulerID, err := b.submit(ctx, job, script, env)
	if err != nil {
		return Result{Status: Failed, Err: err}
	}

	ctxlog.FromContext(ctx).Debug("Job submitted", "job", job.Name, "scheduler_id", schedulerID)

	err = b.waitDone(ctx, job, schedulerID, env)
	if err != nil {
		return Result{Status: Failed, Err: err}
	}

	return Result{Status: Completed}
}

func (b *Batch) submit(ctx context.Context, job *Job, script string, env []string) (string, error) {
	args := append(append([]string{}, b.cfg.Submit[1:]...), script)
	cmd := exec.CommandContext(ctx, b.cfg.Submit[0], args...)
	cmd.Dir = job.Dir
	cmd.Env = env

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if ctx.Err() != nil {
		return "", errors.Wrapf(ctx.Err(), "unable to submit %s", job.Name)
	}
	if err != nil {
		return "", errors.Wrapf(ErrBackend, "unable to submit %s: %v: %s", job.Name, err, lastLine(stderr.String()))
	}

	schedulerID := lastLine(string(out))
	// sbatch --parsable prints "<id>;<cluster>"
	schedulerID, _, _ = strings.Cut(schedulerID, ";")
	if schedulerID == "" {
		return "", errors.Wrapf(ErrBackend, "no job id returned when submitting %s", job.Name)
	}

	return schedulerID, nil
}

// waitDone polls the status command. The job is done when the command fails
// or prints nothing.
func (b *Batch) waitDone(ctx context.Context, job *Job, schedulerID string, env []string) error {
	interval := b.cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		queued, err := b.queued(ctx, job, schedulerID, env)
		if err != nil {
			return err
		}
		if !queued {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "job %s (%s) still queued", job.Name, schedulerID)
		case <-ticker.C:
		}
	}
}

func (b *Batch) queued(ctx context.Context, job *Job, schedulerID string, env []string) (bool, error) {
	args := append(append([]string{}, b.cfg.Status[1:]...), schedulerID)
	cmd := exec.CommandContext(ctx, b.cfg.Status[0], args...)
	cmd.Dir = job.Dir
	cmd.Env = env

	out, err := cmd.Output()
	if ctx.Err() != nil {
		return false, errors.Wrapf(ctx.Err(), "job %s (%s) still queued", job.Name, schedulerID)
	}
	if err != nil {
		return false, nil
	}

	return strings.TrimSpace(string(out)) != "", nil
}

// writeJobScript writes <Dir>/<Name>.job, a shell script running the command
// of job with its environment overrides.
func writeJobScript(job *Job) (string, error) {
	name := job.Name
	if name == "" {
		name = job.ID
	}

	dir, err := filepath.Abs(job.Dir)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve directory of %s", name)
	}

	var buf bytes.Buffer
	buf.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&buf, "cd %s || exit 1\n", shellQuote(dir))

	keys := make([]string, 0, len(job.Env))
	for k := range job.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "export %s=%s\n", k, shellQuote(job.Env[k]))
	}

	quoted := make([]string, 0, len(job.Command))
	for _, arg := range job.Command {
		quoted = append(quoted, shellQuote(arg))
	}
	fmt.Fprintf(&buf, "exec %s\n", strings.Join(quoted, " "))

	path := filepath.Join(dir, name+".job")
	err = os.WriteFile(path, buf.Bytes(), 0o755) //nolint:gosec // the scheduler executes it
	if err != nil {
		return "", errors.Wrapf(err, "unable to write job script %s", path)
	}

	return path, nil
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var _ Backend = (*Batch)(nil)
