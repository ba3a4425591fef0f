package model

import "time"

// PipelineOption is notified of the life of a pipeline: once when it is
// created, when each step is wired, every time an element leaves a step and
// once the pipeline returned. An error returned by a hook stops the pipeline.
//
// Embed NopOption to implement only the hooks you need.
type PipelineOption interface {
	New() error

	// PrepareStep is called when step is added behind parentStep.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput is called for every element a step pushes. waited is the
	// time spent waiting for the input element, computed the time spent on it.
	// The goroutines of a concurrent step call it concurrently.
	OnStepOutput(parentStep, step *StepInfo, waited, computed time.Duration) error

	// PrepareSink is called when the sink is added behind parentStep.
	PrepareSink(parentStep, step *StepInfo) error
	// OnSinkOutput is called for every element the sink consumes.
	OnSinkOutput(parentStep, step *StepInfo, waited, computed time.Duration) error
	// AfterSink is called once the sink consumed its last element.
	AfterSink(step *StepInfo, total time.Duration) error

	Finish() error
}

// NopOption implements every hook of PipelineOption and does nothing.
type NopOption struct{}

func (NopOption) New() error { return nil }

func (NopOption) PrepareStep(_, _ *StepInfo) error { return nil }

func (NopOption) OnStepOutput(_, _ *StepInfo, _, _ time.Duration) error { return nil }

func (NopOption) PrepareSink(_, _ *StepInfo) error { return nil }

func (NopOption) OnSinkOutput(_, _ *StepInfo, _, _ time.Duration) error { return nil }

func (NopOption) AfterSink(_ *StepInfo, _ time.Duration) error { return nil }

func (NopOption) Finish() error { return nil }

var _ PipelineOption = NopOption{}
