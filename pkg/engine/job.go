package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Job is one independent external computation.
type Job struct {
	// ID is generated by Dispatch when empty.
	ID   string
	Name string
	// Command is the executable followed by its arguments.
	Command []string
	// Dir is the working directory of the command.
	Dir string
	// Env overrides the engine environment for this job only.
	Env map[string]string
	// ExpectedOutput is the file the job must produce, relative to Dir unless absolute.
	ExpectedOutput string
}

// OutputPath returns the absolute path of the expected output.
func (j *Job) OutputPath() string {
	if j.ExpectedOutput == "" || filepath.IsAbs(j.ExpectedOutput) {
		return j.ExpectedOutput
	}

	return filepath.Join(j.Dir, j.ExpectedOutput)
}

func (j *Job) materialized() bool {
	path := j.OutputPath()
	if path == "" {
		return false
	}

	_, err := os.Stat(path)

	return err == nil
}

// Status is how a job ended.
type Status int

const (
	Completed Status = iota
	Failed
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Result is the outcome of one job.
type Result struct {
	JobID  string
	Name   string
	Status Status
	// Materialized reports whether the expected output exists once the job ended.
	// A job without expected output is materialized when it completed.
	Materialized bool
	Err          error
	Duration     time.Duration
}

// Report gathers the results of one Dispatch call, in the order of the jobs.
type Report struct {
	RunID   string
	Results []Result
}

// Missing returns the results whose output did not materialize.
func (r *Report) Missing() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Materialized {
			out = append(out, res)
		}
	}

	return out
}

// Materialized returns the results whose output exists.
func (r *Report) Materialized() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Materialized {
			out = append(out, res)
		}
	}

	return out
}
