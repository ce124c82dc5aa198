// Package cli parses command-line arguments into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/crossflowio/crossflow/internal/app"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("crossflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
crossflow - transpiles legacy integration processes into iFlow packages.

Usage:
  crossflow [options] [INPUT_PATH]

Arguments:
  INPUT_PATH
    Path to a single normalized record .json file or a directory of them.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Path to the record file or directory.")
	iFlag := flagSet.String("i", "", "Path to the record file or directory (shorthand).")
	mappingsFlag := flagSet.String("mappings", "mappings", "Path to the mapping table .hcl file or directory.")
	outFlag := flagSet.String("out", "out", "Directory where transpiled packages are written.")
	enrichURLFlag := flagSet.String("enrich-url", "", "Description generator endpoint. Empty disables enrichment.")
	enrichTimeoutFlag := flagSet.Duration("enrich-timeout", 5*time.Second, "Timeout per description generator call.")
	annotateRunFlag := flagSet.Bool("annotate-run", false, "Stamp each package manifest with its run id. Off by default so output stays reproducible.")
	workersFlag := flagSet.Int("workers", 4, "Number of records transpiled concurrently.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *inputFlag != "" {
		path = *inputFlag
	} else if *iFlag != "" {
		path = *iFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Input path determined.", "path", path)

	if path == "" {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		InputPath:     path,
		MappingsPath:  *mappingsFlag,
		OutputDir:     *outFlag,
		EnrichURL:     *enrichURLFlag,
		EnrichTimeout: *enrichTimeoutFlag,
		AnnotateRun:   *annotateRunFlag,
		Workers:       *workersFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
