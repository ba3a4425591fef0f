package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/pkg/pipeline/model"
)

// Pipeline wires steps together. Steps are added with AddRootStep,
// AddStepOneToOne and AddSink, and they all start when Run is called.
type Pipeline struct {
	ctx      context.Context
	cancel   context.CancelFunc
	errcList *errorChans
	opts     []model.PipelineOption
	started  chan struct{}
	// startTime is only written by Run, before started is closed.
	startTime time.Time
}

// New creates a new pipeline. Steps only start consuming once Run is called.
func New(ctx context.Context, opts ...model.PipelineOption) (*Pipeline, error) {
	dCtx, cancel := context.WithCancel(ctx)
	pipe := &Pipeline{
		ctx:       dCtx,
		cancel:    cancel,
		errcList:  &errorChans{},
		opts:      opts,
		started:   make(chan struct{}),
		startTime: time.Now(),
	}

	err := pipe.notify("create", func(opt model.PipelineOption) error { return opt.New() })
	if err != nil {
		cancel()
		return nil, err
	}

	return pipe, nil
}

// Run starts the pipeline and waits for every step to finish. The first error
// returned by a step cancels the others and is returned.
func (p *Pipeline) Run() error {
	defer p.cancel()

	p.startTime = time.Now()
	close(p.started)

	for err := range mergeErrors(p.errcList.all()...) {
		if err != nil {
			return err
		}
	}

	return p.notify("finish", func(opt model.PipelineOption) error { return opt.Finish() })
}

// notify calls hook on every option, stopping at the first error.
func (p *Pipeline) notify(what string, hook func(opt model.PipelineOption) error) error {
	for _, opt := range p.opts {
		if err := hook(opt); err != nil {
			return errors.Wrapf(err, "pipeline option failed on %s", what)
		}
	}

	return nil
}

// spawn runs body in its own goroutine once Run is called. The error it
// returns is reported under name. done is called when body returned.
func (p *Pipeline) spawn(name string, body func() error, done func()) {
	errC := make(chan error, 1)
	p.errcList.add(newErrorChan(name, errC))

	go func() {
		defer close(errC)
		if done != nil {
			defer done()
		}
		if err := p.wait(); err != nil {
			errC <- err
			return
		}
		if err := body(); err != nil {
			errC <- err
		}
	}()
}

// wait blocks a step goroutine until Run is called or the pipeline is cancelled.
func (p *Pipeline) wait() error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.started:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}
