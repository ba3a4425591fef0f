package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/config"
	"github.com/askiada/go-dockpipe/internal/ctxlog"
	"github.com/askiada/go-dockpipe/pkg/engine"
	"github.com/askiada/go-dockpipe/pkg/pipeline/drawer"
	"github.com/askiada/go-dockpipe/pkg/pipeline/measure"
	"github.com/askiada/go-dockpipe/pkg/stage"
	"github.com/askiada/go-dockpipe/pkg/traceback"
)

// Run executes the command described by opts. Logs are written to logW.
func Run(ctx context.Context, opts *Options, logW io.Writer) error {
	logger := ctxlog.NewLogger(opts.LogLevel, opts.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)

	switch opts.Command {
	case TracebackCommand:
		return runTraceback(ctx, opts)
	case ScoreCommand:
		return runScore(ctx, opts)
	default:
		return usageError("unknown command %q", opts.Command)
	}
}

func runTraceback(ctx context.Context, opts *Options) error {
	var tracebackOpts []traceback.Option
	if opts.Graph {
		tracebackOpts = append(tracebackOpts, traceback.WithGraph())
	}

	_, err := traceback.Run(ctx, opts.RunDir, tracebackOpts...)

	return err
}

func runScore(ctx context.Context, opts *Options) error {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(ctx, opts.ConfigPath)
		if err != nil {
			return err
		}
	}

	base := stage.NewBase(opts.RunDir, opts.Name, opts.Order, cfg)

	msr := measure.NewDefaultMeasure()
	engineOpts := []engine.Option{engine.WithMeasure(msr)}
	if opts.DispatchGraph {
		dispatchGraph := drawer.NewDOTDrawer(filepath.Join(base.Path, DispatchGraphFile))
		engineOpts = append(engineOpts, engine.WithDrawer(dispatchGraph, msr))
	}

	eng, err := engine.New(cfg.Engine, engineOpts...)
	if err != nil {
		return errors.Wrap(err, "unable to create engine")
	}

	err = base.LoadPrevious(filepath.Join(opts.RunDir, opts.Previous))
	if err != nil {
		return err
	}

	scoring := stage.NewScoring(base, eng,
		&stage.CommandJobBuilder{Prefix: opts.Name, Command: opts.JobCommand},
		&stage.EnergyScorer{Weights: stage.DefaultWeights},
	)

	return scoring.Run(ctx)
}
