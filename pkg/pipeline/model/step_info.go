package model

// StepType tells where a step sits in the pipeline.
type StepType string

const (
	// RootStepType produces the elements, it has no input.
	RootStepType StepType = "root"
	// NormalStepType turns each input element into one output element.
	NormalStepType StepType = "step"
	// SinkStepType consumes the elements, it has no output.
	SinkStepType StepType = "sink"
)

// StepInfo is what the pipeline options know about a step.
type StepInfo struct {
	Type StepType
	Name string
	// Concurrent is the number of goroutines running the step, 1 at least.
	Concurrent int
}

// Step is a step wired in a pipeline. Output is nil for a sink.
type Step[O any] struct {
	Output  chan O
	Details *StepInfo
}

// StartStep and EndStep bound every pipeline. They never carry elements.
var (
	StartStep = &Step[any]{Details: &StepInfo{Name: "start"}}
	EndStep   = &Step[any]{Details: &StepInfo{Name: "end"}}
)
