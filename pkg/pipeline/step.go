package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-dockpipe/pkg/pipeline/model"
)

// AddStepOneToOne adds a step calling oneToOneFn for every element of input.
// With StepConcurrency greater than one, the output order is not guaranteed.
func AddStepOneToOne[I any, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{Type: model.NormalStepType, Name: name, Concurrent: 1},
		Output:  make(chan O),
	}
	for _, opt := range opts {
		opt(step)
	}
	if step.Details.Concurrent <= 0 {
		step.Details.Concurrent = 1
	}

	err := pipe.notify("prepare "+name, func(opt model.PipelineOption) error {
		return opt.PrepareStep(input.Details, step.Details)
	})
	if err != nil {
		return nil, err
	}

	pipe.spawn(name, func() error {
		return transform(pipe, input, step, oneToOneFn)
	}, func() { close(step.Output) })

	return step, nil
}

// transform runs one worker per unit of concurrency. All the workers stop as
// soon as one of them fails.
func transform[I any, O any](pipe *Pipeline, input *model.Step[I], output *model.Step[O], fn func(context.Context, I) (O, error)) error {
	if output.Details.Concurrent == 1 {
		return worker(pipe.ctx, pipe, 0, input, output, fn)
	}

	grp, gCtx := errgroup.WithContext(pipe.ctx)
	for idx := 0; idx < output.Details.Concurrent; idx++ {
		idx := idx
		grp.Go(func() error {
			return worker(gCtx, pipe, idx, input, output, fn)
		})
	}

	return grp.Wait()
}

func worker[I any, O any](ctx context.Context, pipe *Pipeline, idx int, input *model.Step[I], output *model.Step[O], fn func(context.Context, I) (O, error)) error {
	for {
		waitStart := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "worker %d", idx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}
			fnStart := time.Now()
			out, err := fn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "worker %d", idx)
			}
			computed := time.Since(fnStart)

			select {
			case <-ctx.Done():
				return errors.Wrapf(ctx.Err(), "worker %d", idx)
			case output.Output <- out:
			}

			waited := time.Since(waitStart) - computed
			err = pipe.notify("output of "+output.Details.Name, func(opt model.PipelineOption) error {
				return opt.OnStepOutput(input.Details, output.Details, waited, computed)
			})
			if err != nil {
				return err
			}
		}
	}
}
