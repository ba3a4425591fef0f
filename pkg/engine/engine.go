package engine

import (
	"context"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/config"
	"github.com/askiada/go-dockpipe/internal/ctxlog"
	"github.com/askiada/go-dockpipe/pkg/pipeline"
	"github.com/askiada/go-dockpipe/pkg/pipeline/drawer"
	"github.com/askiada/go-dockpipe/pkg/pipeline/measure"
	"github.com/askiada/go-dockpipe/pkg/pipeline/model"
)

// Backend runs a single job. Execute reports the failure of the job in the
// Result; it never returns an error for a job that simply failed.
type Backend interface {
	Name() string
	// Concurrency is the number of jobs the backend accepts at the same time.
	Concurrency() int
	// Executables lists the commands the backend needs on the PATH.
	Executables() []string
	Execute(ctx context.Context, job *Job, env []string) Result
}

// Engine dispatches jobs to a backend.
type Engine struct {
	cfg         config.Engine
	backend     Backend
	msr         measure.Measure
	pipeOptions []model.PipelineOption
}

// Option configures an Engine.
type Option func(e *Engine)

// WithBackend replaces the backend selected from the configured mode.
func WithBackend(backend Backend) Option {
	return func(e *Engine) {
		e.backend = backend
	}
}

// WithMeasure records the durations of every dispatch in msr and logs a
// digest of them at debug level.
func WithMeasure(msr measure.Measure) Option {
	return func(e *Engine) {
		e.msr = msr
		e.pipeOptions = append(e.pipeOptions, measure.PipelineMeasure(msr))
	}
}

// WithDrawer draws the dispatch pipeline with d once a dispatch is finished.
// When msr is not nil the durations are added to the drawing.
func WithDrawer(d drawer.Drawer, msr measure.Measure) Option {
	return func(e *Engine) {
		e.pipeOptions = append(e.pipeOptions, drawer.PipelineDrawer(d, msr))
	}
}

// New creates an engine for cfg. The backend is chosen from cfg.Mode unless
// WithBackend is given.
func New(cfg config.Engine, opts ...Option) (*Engine, error) {
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.backend != nil {
		return e, nil
	}

	switch cfg.Mode {
	case config.ModeLocal:
		e.backend = NewLocal(cfg.NCores)
	case config.ModeBatch:
		e.backend = NewBatch(cfg.Batch)
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "%q", cfg.Mode)
	}

	return e, nil
}

// Backend returns the backend jobs are dispatched to.
func (e *Engine) Backend() Backend {
	return e.backend
}

// CheckInstalled verifies that the configured executables and the commands
// of the backend can be found.
func (e *Engine) CheckInstalled() error {
	executables := append([]string{}, e.cfg.Executables...)
	executables = append(executables, e.backend.Executables()...)

	for _, executable := range executables {
		_, err := exec.LookPath(executable)
		if err != nil {
			return errors.Wrapf(ErrThirdPartyInstallation, "%s: %v", executable, err)
		}
	}

	return nil
}

type indexedJob struct {
	idx int
	job *Job
}

type indexedResult struct {
	idx    int
	result Result
}

// Dispatch runs every job and blocks until each one completed, failed or timed
// out. The order in which jobs run is unspecified. A job that produced nothing
// is only reported in its Result; a backend that cannot be reached stops the
// dispatch with an error matching ErrBackend.
func (e *Engine) Dispatch(ctx context.Context, jobs []*Job) (*Report, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	logger := ctxlog.FromContext(ctx)
	report := &Report{RunID: uuid.NewString()}
	for _, job := range jobs {
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
	}

	logger.Info("Dispatching jobs", "run_id", report.RunID, "backend", e.backend.Name(), "n", len(jobs))

	pipe, err := pipeline.New(ctx, e.pipeOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	rootStep, err := pipeline.AddRootStep(pipe, "jobs", func(ctx context.Context, rootChan chan<- indexedJob) error {
		for i, job := range jobs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- indexedJob{idx: i, job: job}:
			}
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to add root step")
	}

	runStep, err := pipeline.AddStepOneToOne(pipe, e.backend.Name(), rootStep,
		func(ctx context.Context, in indexedJob) (indexedResult, error) {
			res := e.run(ctx, in.job)
			if errors.Is(res.Err, ErrBackend) {
				return indexedResult{}, res.Err
			}

			return indexedResult{idx: in.idx, result: res}, nil
		},
		pipeline.StepConcurrency[indexedResult](e.backend.Concurrency()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add run step")
	}

	collected := make([]indexedResult, 0, len(jobs))
	err = pipeline.AddSink(pipe, "results", runStep, func(_ context.Context, in indexedResult) error {
		collected = append(collected, in)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to add sink")
	}

	err = pipe.Run()
	if err != nil {
		return nil, errors.Wrap(err, "unable to dispatch jobs")
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].idx < collected[j].idx
	})
	report.Results = make([]Result, 0, len(collected))
	for _, in := range collected {
		report.Results = append(report.Results, in.result)
	}

	if e.msr != nil {
		for _, sum := range measure.Summary(e.msr) {
			logger.Debug("Dispatch step", "run_id", report.RunID, "step", sum.Name, "n", sum.Count,
				"average", sum.Average, "slowest", sum.Slowest)
		}
	}

	logger.Info("Jobs finished", "run_id", report.RunID, "n", len(report.Results), "missing", len(report.Missing()))

	return report, nil
}

func (e *Engine) run(ctx context.Context, job *Job) Result {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	jobCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	var res Result
	if len(job.Command) == 0 {
		res = Result{Status: Failed, Err: errors.New("empty command")}
	} else {
		res = e.backend.Execute(jobCtx, job, e.environ(job))
	}

	if res.Status != Completed && errors.Is(jobCtx.Err(), context.DeadlineExceeded) {
		res.Status = TimedOut
	}

	res.JobID = job.ID
	res.Name = job.Name
	res.Duration = time.Since(start)
	if job.ExpectedOutput == "" {
		res.Materialized = res.Status == Completed
	} else {
		res.Materialized = job.materialized()
	}

	logger.Debug("Job finished", "job", job.Name, "status", res.Status.String(), "materialized", res.Materialized, "duration", res.Duration)
	if res.Err != nil {
		logger.Debug("Job error", "job", job.Name, "error", res.Err)
	}

	return res
}

// environ returns the environment of the process running job: the current
// environment, the engine overrides and the job overrides.
func (e *Engine) environ(job *Job) []string {
	env := os.Environ()
	env = append(env, sortedEnv(e.cfg.Env)...)

	return append(env, sortedEnv(job.Env)...)
}

func sortedEnv(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+vars[k])
	}

	return out
}
