package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/pkg/pipeline/measure"
	"github.com/askiada/go-dockpipe/pkg/pipeline/model"
)

// pipelineDrawer mirrors the steps of a pipeline as vertices. Every sink is
// linked to the end vertex.
type pipelineDrawer struct {
	model.NopOption
	d       Drawer
	msr     measure.Measure
	started time.Time
}

func (pd *pipelineDrawer) New() error {
	for _, step := range []*model.StepInfo{model.StartStep.Details, model.EndStep.Details} {
		if err := pd.d.AddStep(step.Name); err != nil {
			return errors.Wrapf(err, "unable to draw %s", step.Name)
		}
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	return pd.addBehind(parentStep.Name, step.Name)
}

func (pd *pipelineDrawer) PrepareSink(parentStep, step *model.StepInfo) error {
	if err := pd.addBehind(parentStep.Name, step.Name); err != nil {
		return err
	}

	return pd.d.AddLink(step.Name, model.EndStep.Details.Name)
}

func (pd *pipelineDrawer) addBehind(parent, name string) error {
	if err := pd.d.AddStep(name); err != nil {
		return errors.Wrapf(err, "unable to draw %s", name)
	}

	return pd.d.AddLink(parent, name)
}

func (pd *pipelineDrawer) Finish() error {
	if err := pd.d.SetTotalTime(model.EndStep.Details.Name, pd.started); err != nil {
		return errors.Wrap(err, "unable to label the end step")
	}
	if pd.msr != nil {
		if err := pd.d.AddMeasure(pd.msr); err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	return errors.Wrap(pd.d.Draw(), "unable to draw pipeline")
}

// PipelineDrawer draws the pipeline steps once the pipeline is finished. When msr
// is not nil, the durations it recorded are added to the drawing.
func PipelineDrawer(drawer Drawer, msr measure.Measure) model.PipelineOption {
	return &pipelineDrawer{d: drawer, msr: msr, started: time.Now()}
}
