package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/askiada/go-dockpipe/internal/ctxlog"
	"github.com/askiada/go-dockpipe/internal/runlayout"
)

// Commands.
const (
	TracebackCommand = "traceback"
	ScoreCommand     = "score"
)

// DispatchGraphFile is the file written by score with --dispatch-graph.
const DispatchGraphFile = "dispatch.dot"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Options is the parsed command line.
type Options struct {
	Command   string
	RunDir    string
	LogLevel  string
	LogFormat string

	// traceback
	Graph bool

	// score
	ConfigPath string
	Previous   string
	Name       string
	Order      int
	JobCommand []string
	// DispatchGraph draws the dispatch pipeline in the new step folder.
	DispatchGraph bool
}

const usage = `
dockpipe - bookkeeping of multi-stage docking runs.

Usage:
  dockpipe traceback -r RUN_DIR [options]
      Trace every model of the run back to its topologies, with its rank at every step.
  dockpipe score -r RUN_DIR -p PREVIOUS_STEP [options] -- COMMAND [ARGS...]
      Run COMMAND for every model of PREVIOUS_STEP and score the models it writes.
      {input} and {output} in the arguments are replaced by the model and the
      expected file.

Run 'dockpipe COMMAND -h' for the options of a command.
`

// Parse processes command-line arguments. It returns the options, a boolean
// indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(output, usage)
		return nil, true, nil
	}

	opts := &Options{Command: args[0]}
	flagSet := flag.NewFlagSet("dockpipe "+opts.Command, flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.StringVar(&opts.RunDir, "run-dir", "", "The input run directory.")
	flagSet.StringVar(&opts.RunDir, "r", "", "The input run directory (shorthand).")
	flagSet.StringVar(&opts.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&opts.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	switch opts.Command {
	case TracebackCommand:
		flagSet.BoolVar(&opts.Graph, "graph", false, "Also draw the lineage graph as a DOT file.")
	case ScoreCommand:
		flagSet.StringVar(&opts.ConfigPath, "config", "", "Path to the HCL run configuration.")
		flagSet.StringVar(&opts.ConfigPath, "c", "", "Path to the HCL run configuration (shorthand).")
		flagSet.StringVar(&opts.Previous, "previous", "", "Step folder holding the models to score.")
		flagSet.StringVar(&opts.Previous, "p", "", "Step folder holding the models to score (shorthand).")
		flagSet.StringVar(&opts.Name, "name", "emscoring", "Module name of the new step.")
		flagSet.IntVar(&opts.Order, "order", -1, "Order of the new step. Defaults to the order of the previous step plus one.")
		flagSet.BoolVar(&opts.DispatchGraph, "dispatch-graph", false, "Draw the job dispatch with its timings as "+DispatchGraphFile+" in the new step folder.")
	default:
		fmt.Fprint(output, usage)
		return nil, false, usageError("unknown command %q", opts.Command)
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}

	if opts.RunDir == "" {
		flagSet.Usage()
		return nil, false, usageError("the run directory is required: -r RUN_DIR")
	}

	opts.LogFormat = strings.ToLower(opts.LogFormat)
	if opts.LogFormat != "text" && opts.LogFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	opts.LogLevel = strings.ToLower(opts.LogLevel)
	if _, ok := ctxlog.ParseLevel(opts.LogLevel); !ok {
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if opts.Command == ScoreCommand {
		if err := parseScore(opts, flagSet.Args()); err != nil {
			return nil, false, err
		}
	}

	return opts, false, nil
}

func parseScore(opts *Options, rest []string) error {
	if opts.Previous == "" {
		return usageError("the previous step is required: -p PREVIOUS_STEP")
	}

	prevOrder, _, ok := runlayout.ParseStepName(opts.Previous)
	if !ok {
		return usageError("invalid previous step %q: must be <order>_<module>", opts.Previous)
	}

	if opts.Order < 0 {
		opts.Order = prevOrder + 1
	}
	if opts.Order <= prevOrder {
		return usageError("order %d must come after the previous step %q", opts.Order, opts.Previous)
	}

	if len(rest) == 0 {
		return usageError("the command to run is required after the options")
	}
	opts.JobCommand = rest

	return nil
}
