package stage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/config"
	"github.com/askiada/go-dockpipe/internal/ctxlog"
	"github.com/askiada/go-dockpipe/pkg/engine"
	"github.com/askiada/go-dockpipe/pkg/moduleio"
	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// Base is the state shared by every stage.
type Base struct {
	// Name is the module run by the stage, for instance emscoring.
	Name  string
	Order int
	// Path is the directory of the stage, <run dir>/<order>_<name>.
	Path   string
	Config *config.Config

	// PreviousIO is the manifest of the stage that ran before this one.
	PreviousIO *moduleio.Manifest
	// OutputModels are the models the stage expects to produce.
	OutputModels []*ontology.Model
	// IO is the manifest written by ExportOutputModels.
	IO *moduleio.Manifest
}

// NewBase creates the stage order of module name in runDir.
func NewBase(runDir, name string, order int, cfg *config.Config) *Base {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Base{
		Name:       name,
		Order:      order,
		Path:       filepath.Join(runDir, StepName(order, name)),
		Config:     cfg,
		PreviousIO: moduleio.New(),
	}
}

// StepName is the folder name of a stage.
func StepName(order int, name string) string {
	return fmt.Sprintf("%d_%s", order, name)
}

// LoadPrevious reads the manifest of the stage folder dir.
func (b *Base) LoadPrevious(dir string) error {
	manifest, err := moduleio.Load(filepath.Join(dir, moduleio.FileName))
	if err != nil {
		return errors.Wrapf(err, "unable to load previous stage of %s", b.Name)
	}
	b.PreviousIO = manifest

	return nil
}

// ConfirmInstallation fails with engine.ErrThirdPartyInstallation when eng
// cannot find what it needs to run the jobs of the stage.
func (b *Base) ConfirmInstallation(ctx context.Context, eng *engine.Engine) error {
	err := eng.CheckInstalled()
	if err != nil {
		return errors.Wrapf(err, "stage %s", b.Name)
	}
	ctxlog.FromContext(ctx).Debug("Installation confirmed", "stage", b.Name)

	return nil
}

// ExportOutputModels records the outputs of the previous stage as inputs and
// OutputModels as outputs, drops the outputs that did not materialize and
// writes the manifest in Path. It returns the percentage of missing outputs
// and fails with ErrFaultyTolerance, without writing anything, when that
// percentage is above the tolerance of the configuration.
func (b *Base) ExportOutputModels(ctx context.Context) (float64, error) {
	logger := ctxlog.FromContext(ctx)

	manifest := moduleio.New()
	manifest.Add(moduleio.Input, b.PreviousIO.OutputRecords()...)
	manifest.AddModels(moduleio.Output, b.OutputModels...)

	faulty, err := manifest.PruneMissing()
	if err != nil {
		return 0, errors.Wrapf(err, "stage %s", b.Name)
	}

	if faulty > 0 {
		logger.Warn("Missing outputs", "stage", b.Name, "faulty", faulty, "tolerance", b.Config.Tolerance)
	}

	if faulty > b.Config.Tolerance {
		return faulty, errors.Wrapf(ErrFaultyTolerance, "stage %s: %.2f%% of the outputs are missing, tolerance is %.2f%%",
			b.Name, faulty, b.Config.Tolerance)
	}

	b.IO = manifest
	fpath, err := manifest.Save(b.Path)
	if err != nil {
		return faulty, errors.Wrapf(err, "stage %s", b.Name)
	}

	logger.Info("Stage exported", "stage", b.Name, "path", fpath, "models", len(manifest.Output))

	return faulty, nil
}
