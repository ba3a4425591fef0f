// Package runlayout finds the step folders of a run directory.
//
// A step folder is named <order>_<module>, for instance 0_topoaa or 4_emscoring.
package runlayout

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AnalysisModules only annotate or select the models of a run, they never
// produce new ones.
var AnalysisModules = []string{"caprieval", "seletop", "topoaa", "rmsdmatrix", "clustrmsd", "clustfcc"}

// Step is a step folder of a run.
type Step struct {
	Order  int
	Module string
	// Name is the folder name.
	Name string
	// Dir is the path of the folder.
	Dir string
}

// ParseStepName splits a folder name into its order and module.
func ParseStepName(name string) (order int, module string, ok bool) {
	prefix, module, found := strings.Cut(name, "_")
	if !found || module == "" {
		return 0, "", false
	}

	order, err := strconv.Atoi(prefix)
	if err != nil || order < 0 {
		return 0, "", false
	}

	return order, module, true
}

// StepFolders returns the step folders of runDir sorted by order. Other
// entries are ignored.
func StepFolders(runDir string) ([]Step, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read run directory %s", runDir)
	}

	var steps []Step
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		order, module, ok := ParseStepName(entry.Name())
		if !ok {
			continue
		}

		steps = append(steps, Step{
			Order:  order,
			Module: module,
			Name:   entry.Name(),
			Dir:    filepath.Join(runDir, entry.Name()),
		})
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})

	return steps, nil
}

// IsAnalysis reports whether module is one of AnalysisModules.
func IsAnalysis(module string) bool {
	for _, m := range AnalysisModules {
		if m == module {
			return true
		}
	}

	return false
}

// WithoutAnalysis returns the steps whose module produces models.
func WithoutAnalysis(steps []Step) []Step {
	out := make([]Step, 0, len(steps))
	for _, step := range steps {
		if !IsAnalysis(step.Module) {
			out = append(out, step)
		}
	}

	return out
}
