package stage

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/pkg/engine"
	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// Placeholders replaced in the arguments of a CommandJobBuilder.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

// JobBuilder turns the num-th model (counted from 1) handed to a stage into
// the job computing it and the model that job is expected to produce.
type JobBuilder interface {
	BuildJob(num int, model *ontology.Model, stage *Base) (*engine.Job, *ontology.Model, error)
}

// CommandJobBuilder runs the same command for every model. The expected model
// is <Prefix>_<num>.pdb in the stage directory and keeps the topologies of its
// parent.
type CommandJobBuilder struct {
	Prefix string
	// Command may hold InputPlaceholder, replaced by the absolute path of the
	// model, and OutputPlaceholder, replaced by the expected file name.
	Command []string
	Env     map[string]string
}

func (c *CommandJobBuilder) BuildJob(num int, model *ontology.Model, stage *Base) (*engine.Job, *ontology.Model, error) {
	if len(c.Command) == 0 {
		return nil, nil, errors.New("command must be set")
	}

	prefix := c.Prefix
	if prefix == "" {
		prefix = stage.Name
	}

	expected := ontology.NewModel(fmt.Sprintf("%s_%d.pdb", prefix, num), stage.Path, model.Topology...)

	replacer := strings.NewReplacer(InputPlaceholder, model.FullName(), OutputPlaceholder, expected.FileName)
	command := make([]string, len(c.Command))
	for i, arg := range c.Command {
		command[i] = replacer.Replace(arg)
	}

	return &engine.Job{
		Name:           fmt.Sprintf("%s_%d", prefix, num),
		Command:        command,
		Dir:            stage.Path,
		Env:            c.Env,
		ExpectedOutput: expected.FileName,
	}, expected, nil
}

var _ JobBuilder = (*CommandJobBuilder)(nil)
