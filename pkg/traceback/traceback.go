package traceback

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/ctxlog"
	"github.com/askiada/go-dockpipe/internal/runlayout"
	"github.com/askiada/go-dockpipe/pkg/moduleio"
)

const (
	// Folder is the directory of the run holding the traceback output.
	Folder = "traceback"
	// FileName is the name of the traceback table.
	FileName = "traceback.tsv"
	// GraphFileName is the name of the lineage graph.
	GraphFileName = "traceback.dot"
)

type options struct {
	graph bool
}

// Option configures Run.
type Option func(o *options)

// WithGraph also draws the lineage graph next to the table.
func WithGraph() Option {
	return func(o *options) {
		o.graph = true
	}
}

// Run traces back the models of the run in runDir and writes the table to
// <runDir>/traceback/traceback.tsv. It returns the path of the table.
func Run(ctx context.Context, runDir string, opts ...Option) (string, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Running traceback", "run_dir", runDir)

	outDir := filepath.Join(runDir, Folder)
	err := os.Mkdir(outDir, 0o755)
	switch {
	case errors.Is(err, fs.ErrExist):
		logger.Warn("Directory already exists", "dir", outDir)
	case err != nil:
		return "", errors.Wrapf(err, "unable to create %s", outDir)
	default:
		logger.Info("Created directory", "dir", outDir)
	}

	stages, err := LoadStages(ctx, runDir)
	if err != nil {
		return "", err
	}

	lineages, maxTopologies := Reconstruct(stages)
	table := NewTable(stages, lineages, maxTopologies)

	tablePath := filepath.Join(outDir, FileName)
	err = writeTable(tablePath, table)
	if err != nil {
		return "", err
	}
	logger.Info("Traceback table written", "path", tablePath, "rows", len(table.Rows), "columns", len(table.Columns))

	if o.graph {
		graphPath := filepath.Join(outDir, GraphFileName)
		d, err := LineageGraph(graphPath, stages, table)
		if err != nil {
			return "", errors.Wrap(err, "unable to build lineage graph")
		}
		err = d.Draw()
		if err != nil {
			return "", errors.Wrap(err, "unable to draw lineage graph")
		}
		logger.Info("Lineage graph written", "path", graphPath)
	}

	return tablePath, nil
}

// LoadStages reads the manifests of the steps of runDir that produce models,
// in step order.
func LoadStages(ctx context.Context, runDir string) ([]Stage, error) {
	logger := ctxlog.FromContext(ctx)

	steps, err := runlayout.StepFolders(runDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Reading run directory", "steps", stepNames(steps))

	traced := runlayout.WithoutAnalysis(steps)
	if len(traced) == 0 {
		return nil, errors.Wrapf(ErrNoSteps, "in %s", runDir)
	}
	logger.Info("Steps to trace back", "steps", stepNames(traced))

	stages := make([]Stage, 0, len(traced))
	for _, step := range traced {
		manifestPath := filepath.Join(step.Dir, moduleio.FileName)
		_, err := os.Stat(manifestPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrManifestMissing, "%s", manifestPath)
		}

		manifest, err := moduleio.Load(manifestPath)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to load step %s", step.Name)
		}

		logger.Debug("Step loaded", "step", step.Name, "models", len(manifest.OutputModels()))
		stages = append(stages, Stage{Name: step.Name, Models: manifest.OutputModels()})
	}

	return stages, nil
}

func stepNames(steps []runlayout.Step) string {
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = step.Name
	}

	return strings.Join(names, ", ")
}

func writeTable(path string, table *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer file.Close()

	err = table.WriteTSV(file)
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}

	return file.Close()
}
