package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/optspec/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments on top of environment defaults.
// It returns a populated Config, a boolean indicating if the program
// should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	defaults := app.Defaults()

	flagSet := flag.NewFlagSet("optspec", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
optspec - a declarative optimization session service.

Usage:
  optspec [options] [SPEC_PATH]

Arguments:
  SPEC_PATH
    Path to a specification file (.yaml, .yml, .json or .hcl). When given,
    the specification is solved once and the result printed as JSON.

Options:
`)
		flagSet.PrintDefaults()
	}

	specFlag := flagSet.String("spec", defaults.SpecPath, "Path to a specification file to solve once.")
	listenFlag := flagSet.String("listen", defaults.ListenAddr, "Address for the HTTP API, e.g. ':8080'. Empty disables the server.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	maxNodesFlag := flagSet.Int("solver-max-nodes", defaults.SolverMaxNodes, "Search node budget for the local solver. 0 uses the built-in default.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	specPath := *specFlag
	if specPath == "" && flagSet.NArg() > 0 {
		specPath = flagSet.Arg(0)
	}

	if specPath == "" && *listenFlag == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat, err := app.ParseLogFormat(*logFormatFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if _, err := app.ParseLogLevel(*logLevelFlag); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	logLevel := strings.ToLower(*logLevelFlag)

	config, err := app.NewConfig(app.Config{
		SpecPath:       specPath,
		ListenAddr:     *listenFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		SolverMaxNodes: *maxNodesFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
