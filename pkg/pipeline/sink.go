package pipeline

import (
	"context"
	"time"

	"github.com/askiada/go-dockpipe/pkg/pipeline/model"
)

// AddSink adds the last step of the pipeline. sinkFn is called sequentially for
// every element of input.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}

	sink := &model.StepInfo{Type: model.SinkStepType, Name: name, Concurrent: 1}
	err := pipe.notify("prepare "+name, func(opt model.PipelineOption) error {
		return opt.PrepareSink(input.Details, sink)
	})
	if err != nil {
		return err
	}

	pipe.spawn(name, func() error {
		if err := consume(pipe, input, sink, sinkFn); err != nil {
			return err
		}
		total := time.Since(pipe.startTime)

		return pipe.notify("after "+name, func(opt model.PipelineOption) error {
			return opt.AfterSink(sink, total)
		})
	}, nil)

	return nil
}

func consume[I any](pipe *Pipeline, input *model.Step[I], sink *model.StepInfo, sinkFn func(ctx context.Context, input I) error) error {
	for {
		waitStart := time.Now()
		select {
		case <-pipe.ctx.Done():
			return pipe.ctx.Err()
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}
			waited := time.Since(waitStart)

			fnStart := time.Now()
			if err := sinkFn(pipe.ctx, in); err != nil {
				return err
			}
			computed := time.Since(fnStart)

			err := pipe.notify("output of "+sink.Name, func(opt model.PipelineOption) error {
				return opt.OnSinkOutput(input.Details, sink, waited, computed)
			})
			if err != nil {
				return err
			}
		}
	}
}
