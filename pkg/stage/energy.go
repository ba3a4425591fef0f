package stage

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// Scorer computes the score of a model whose file exists.
type Scorer interface {
	Score(ctx context.Context, model *ontology.Model) (float64, error)
}

// Weights of the energy terms of a score.
type Weights struct {
	VdW    float64
	Elec   float64
	Desolv float64
	AIR    float64
	BSA    float64
}

// DefaultWeights are the weights used to score a minimized model.
var DefaultWeights = Weights{VdW: 1.0, Elec: 0.2, Desolv: 1.0, AIR: 0.1, BSA: 0}

// EnergyScorer reads the energy terms written as REMARK lines at the top of a
// model and returns their weighted sum. Missing terms count as zero.
//
//	REMARK energies: <total>, <bonds>, <angles>, <improper>, <dihe>, <vdw>, <elec>, <air>, ...
//	REMARK Desolvation energy: <desolv>
//	REMARK buried surface area: <bsa>
type EnergyScorer struct {
	Weights Weights
}

const (
	energiesRemark = "REMARK energies:"
	desolvRemark   = "REMARK Desolvation energy:"
	bsaRemark      = "REMARK buried surface area:"

	vdwIdx  = 5
	elecIdx = 6
	airIdx  = 7
)

type energyTerms struct {
	vdw, elec, desolv, air, bsa float64
}

func (e *EnergyScorer) Score(_ context.Context, model *ontology.Model) (float64, error) {
	terms, err := readEnergyTerms(model.FullName())
	if err != nil {
		return 0, err
	}

	w := e.Weights

	return w.VdW*terms.vdw + w.Elec*terms.elec + w.Desolv*terms.desolv + w.AIR*terms.air + w.BSA*terms.bsa, nil
}

func readEnergyTerms(path string) (energyTerms, error) {
	var terms energyTerms

	file, err := os.Open(path)
	if err != nil {
		return terms, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, energiesRemark):
			values, err := parseFloats(strings.Split(strings.TrimPrefix(line, energiesRemark), ","))
			if err != nil {
				return terms, errors.Wrapf(err, "unable to read energies of %s", path)
			}
			terms.vdw = valueAt(values, vdwIdx)
			terms.elec = valueAt(values, elecIdx)
			terms.air = valueAt(values, airIdx)
		case strings.HasPrefix(line, desolvRemark):
			terms.desolv, err = parseFloat(strings.TrimPrefix(line, desolvRemark))
			if err != nil {
				return terms, errors.Wrapf(err, "unable to read desolvation energy of %s", path)
			}
		case strings.HasPrefix(line, bsaRemark):
			terms.bsa, err = parseFloat(strings.TrimPrefix(line, bsaRemark))
			if err != nil {
				return terms, errors.Wrapf(err, "unable to read buried surface area of %s", path)
			}
		case strings.HasPrefix(line, "ATOM"):
			// remarks are only written before the coordinates
			return terms, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return terms, errors.Wrapf(err, "unable to read %s", path)
	}

	return terms, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			continue
		}
		v, err := parseFloat(field)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

func valueAt(values []float64, idx int) float64 {
	if idx < len(values) {
		return values[idx]
	}

	return 0
}

var _ Scorer = (*EnergyScorer)(nil)
