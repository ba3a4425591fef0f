package stage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/internal/ctxlog"
	"github.com/askiada/go-dockpipe/pkg/engine"
	"github.com/askiada/go-dockpipe/pkg/moduleio"
	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// Scoring runs one job per model of the previous stage and scores the models
// the jobs produce.
type Scoring struct {
	*Base
	Engine *engine.Engine
	Jobs   JobBuilder
	Scorer Scorer
}

// NewScoring creates a scoring stage.
func NewScoring(base *Base, eng *engine.Engine, jobs JobBuilder, scorer Scorer) *Scoring {
	return &Scoring{
		Base:   base,
		Engine: eng,
		Jobs:   jobs,
		Scorer: scorer,
	}
}

// Run scores every model of the previous stage, writes <Name>.tsv and the
// manifest of the stage.
func (s *Scoring) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	err := s.ConfirmInstallation(ctx, s.Engine)
	if err != nil {
		return err
	}

	err = os.MkdirAll(s.Path, 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create stage directory %s", s.Path)
	}

	candidates, err := s.PreviousIO.RetrieveModels(moduleio.Individualize)
	if err != nil {
		return errors.Wrapf(err, "stage %s", s.Name)
	}

	var toScore []*ontology.Model
	for _, cand := range candidates {
		toScore = append(toScore, cand.Models()...)
	}
	if len(toScore) == 0 {
		return errors.Wrapf(ErrNoOutput, "stage %s", s.Name)
	}

	s.OutputModels = make([]*ontology.Model, 0, len(toScore))
	jobs := make([]*engine.Job, 0, len(toScore))
	for i, model := range toScore {
		job, expected, err := s.Jobs.BuildJob(i+1, model, s.Base)
		if err != nil {
			return errors.Wrapf(err, "unable to build job of %s", model.FileName)
		}
		expected.OriName = model.FileName
		s.OutputModels = append(s.OutputModels, expected)
		jobs = append(jobs, job)
	}

	logger.Info("Running jobs", "stage", s.Name, "n", len(jobs))
	report, err := s.Engine.Dispatch(ctx, jobs)
	if err != nil {
		return errors.Wrapf(err, "stage %s", s.Name)
	}
	logger.Info("Jobs have finished", "stage", s.Name, "missing", len(report.Missing()))

	for _, model := range s.OutputModels {
		if !model.IsPresent() {
			continue
		}
		model.Score, err = s.Scorer.Score(ctx, model)
		if err != nil {
			return errors.Wrapf(err, "unable to score %s", model.FileName)
		}
	}

	tsvPath := filepath.Join(s.Path, s.Name+".tsv")
	logger.Info("Saving output", "stage", s.Name, "path", tsvPath)
	err = s.WriteTSV(tsvPath)
	if err != nil {
		return err
	}

	_, err = s.ExportOutputModels(ctx)

	return err
}

// WriteTSV writes one line per output model: its name, the name of its parent
// and its score.
func (s *Scoring) WriteTSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	w.Comma = '\t'

	err = w.Write([]string{"structure", "original_name", "score"})
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}
	for _, model := range s.OutputModels {
		err = w.Write([]string{model.FileName, model.OriName, strconv.FormatFloat(model.Score, 'g', -1, 64)})
		if err != nil {
			return errors.Wrapf(err, "unable to write %s", path)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}

	return file.Close()
}
