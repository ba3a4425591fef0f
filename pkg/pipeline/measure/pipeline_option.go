package measure

import (
	"time"

	"github.com/askiada/go-dockpipe/pkg/pipeline/model"
)

type pipelineMeasure struct {
	model.NopOption
	msr Measure
}

func (pm *pipelineMeasure) New() error {
	for _, step := range []*model.StepInfo{model.StartStep.Details, model.EndStep.Details} {
		pm.msr.AddMetric(step.Name, 1)
	}

	return nil
}

func (pm *pipelineMeasure) PrepareStep(_, step *model.StepInfo) error {
	pm.msr.AddMetric(step.Name, step.Concurrent)
	return nil
}

func (pm *pipelineMeasure) PrepareSink(_, step *model.StepInfo) error {
	pm.msr.AddMetric(step.Name, step.Concurrent)
	return nil
}

func (pm *pipelineMeasure) OnStepOutput(parentStep, step *model.StepInfo, waited, computed time.Duration) error {
	pm.record(parentStep, step, waited, computed)
	return nil
}

func (pm *pipelineMeasure) OnSinkOutput(parentStep, step *model.StepInfo, waited, computed time.Duration) error {
	pm.record(parentStep, step, waited, computed)
	return nil
}

func (pm *pipelineMeasure) record(parentStep, step *model.StepInfo, waited, computed time.Duration) {
	mt := pm.msr.GetMetric(step.Name)
	if mt == nil {
		return
	}
	mt.Record(computed)
	mt.RecordWait(parentStep.Name, waited)
}

func (pm *pipelineMeasure) AfterSink(step *model.StepInfo, total time.Duration) error {
	for _, name := range []string{step.Name, model.EndStep.Details.Name} {
		if mt := pm.msr.GetMetric(name); mt != nil {
			mt.SetTotal(total)
		}
	}

	return nil
}

// PipelineMeasure records the durations of the pipeline steps in msr.
func PipelineMeasure(msr Measure) model.PipelineOption {
	return &pipelineMeasure{msr: msr}
}
