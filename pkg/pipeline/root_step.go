package pipeline

import (
	"context"

	"github.com/askiada/go-dockpipe/pkg/pipeline/model"
)

// AddRootStep adds the step feeding the pipeline. stepFn pushes elements to
// rootChan and the channel is closed when it returns.
func AddRootStep[O any](pipe *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{Type: model.RootStepType, Name: name, Concurrent: 1},
		Output:  make(chan O),
	}
	err := pipe.notify("prepare "+name, func(opt model.PipelineOption) error {
		return opt.PrepareStep(model.StartStep.Details, step.Details)
	})
	if err != nil {
		return nil, err
	}

	pipe.spawn(name, func() error {
		return stepFn(pipe.ctx, step.Output)
	}, func() { close(step.Output) })

	return step, nil
}
