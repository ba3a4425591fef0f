package config

import (
	"context"
	"runtime"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/ctxlog"
)

// ErrInvalidConfig is returned when a value of the configuration is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Modes recognised by the execution engine.
const (
	ModeLocal = "local"
	ModeBatch = "batch"
)

// Config is the run configuration shared by the stages.
type Config struct {
	// Tolerance is the percentage of missing outputs a stage accepts before aborting.
	Tolerance float64
	Engine    Engine
}

// Engine configures how jobs are dispatched.
type Engine struct {
	Mode string
	// NCores bounds the number of jobs running at the same time in local mode.
	NCores int
	// Timeout bounds every job. Zero means no bound.
	Timeout     time.Duration
	Executables []string
	Env         map[string]string
	Batch       Batch
}

// Batch configures the external scheduler used in batch mode.
type Batch struct {
	Submit       []string
	Status       []string
	PollInterval time.Duration
	// QueueLimit bounds the number of jobs queued on the scheduler at the same time.
	QueueLimit int
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Tolerance: 5,
		Engine: Engine{
			Mode:   ModeLocal,
			NCores: runtime.NumCPU(),
			Env:    map[string]string{},
			Batch: Batch{
				Submit:       []string{"sbatch", "--parsable"},
				Status:       []string{"squeue", "-h", "-j"},
				PollInterval: 10 * time.Second,
				QueueLimit:   100,
			},
		},
	}
}

type hclFile struct {
	Tolerance *float64   `hcl:"tolerance,optional"`
	Engine    *hclEngine `hcl:"engine,block"`
}

type hclEngine struct {
	Mode        *string           `hcl:"mode,optional"`
	NCores      *int              `hcl:"ncores,optional"`
	Timeout     *string           `hcl:"timeout,optional"`
	Executables []string          `hcl:"executables,optional"`
	Env         map[string]string `hcl:"env,optional"`
	Batch       *hclBatch         `hcl:"batch,block"`
}

type hclBatch struct {
	Submit       []string `hcl:"submit,optional"`
	Status       []string `hcl:"status,optional"`
	PollInterval *string  `hcl:"poll_interval,optional"`
	QueueLimit   *int     `hcl:"queue_limit,optional"`
}

// Load reads the HCL file at path over the defaults and validates the result.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading run configuration", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "unable to parse config file %s", path)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "unable to decode config file %s", path)
	}

	cfg := Default()
	err := parsed.mergeInto(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	logger.Debug("Run configuration loaded", "mode", cfg.Engine.Mode, "ncores", cfg.Engine.NCores, "tolerance", cfg.Tolerance)

	return cfg, nil
}

func (f *hclFile) mergeInto(cfg *Config) error {
	if f.Tolerance != nil {
		cfg.Tolerance = *f.Tolerance
	}

	if f.Engine == nil {
		return nil
	}

	eng := f.Engine
	if eng.Mode != nil {
		cfg.Engine.Mode = *eng.Mode
	}
	if eng.NCores != nil {
		cfg.Engine.NCores = *eng.NCores
	}
	if eng.Timeout != nil {
		timeout, err := parseDuration("timeout", *eng.Timeout)
		if err != nil {
			return err
		}
		cfg.Engine.Timeout = timeout
	}
	if eng.Executables != nil {
		cfg.Engine.Executables = eng.Executables
	}
	for k, v := range eng.Env {
		cfg.Engine.Env[k] = v
	}

	if eng.Batch == nil {
		return nil
	}

	batch := eng.Batch
	if batch.Submit != nil {
		cfg.Engine.Batch.Submit = batch.Submit
	}
	if batch.Status != nil {
		cfg.Engine.Batch.Status = batch.Status
	}
	if batch.PollInterval != nil {
		interval, err := parseDuration("poll_interval", *batch.PollInterval)
		if err != nil {
			return err
		}
		cfg.Engine.Batch.PollInterval = interval
	}
	if batch.QueueLimit != nil {
		cfg.Engine.Batch.QueueLimit = *batch.QueueLimit
	}

	return nil
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "%s %q is not a duration", name, value)
	}

	return d, nil
}

// Validate checks that every value is in range.
func (c *Config) Validate() error {
	switch {
	case c.Tolerance < 0 || c.Tolerance > 100:
		return errors.Wrapf(ErrInvalidConfig, "tolerance must be between 0 and 100, got %v", c.Tolerance)
	case c.Engine.Mode != ModeLocal && c.Engine.Mode != ModeBatch:
		return errors.Wrapf(ErrInvalidConfig, "unknown engine mode %q", c.Engine.Mode)
	case c.Engine.NCores < 1:
		return errors.Wrapf(ErrInvalidConfig, "ncores must be at least 1, got %d", c.Engine.NCores)
	case c.Engine.Timeout < 0:
		return errors.Wrap(ErrInvalidConfig, "timeout must not be negative")
	}

	if c.Engine.Mode == ModeBatch {
		switch {
		case len(c.Engine.Batch.Submit) == 0:
			return errors.Wrap(ErrInvalidConfig, "batch submit command must be set")
		case len(c.Engine.Batch.Status) == 0:
			return errors.Wrap(ErrInvalidConfig, "batch status command must be set")
		case c.Engine.Batch.PollInterval <= 0:
			return errors.Wrap(ErrInvalidConfig, "batch poll_interval must be positive")
		case c.Engine.Batch.QueueLimit < 1:
			return errors.Wrapf(ErrInvalidConfig, "batch queue_limit must be at least 1, got %d", c.Engine.Batch.QueueLimit)
		}
	}

	return nil
}
