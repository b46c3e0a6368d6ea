package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/modgen/internal/app"
)

// Exit codes reported by the modgen binary.
const (
	ExitFatal                = 1
	ExitUsage                = 2
	ExitRegenerationRequired = 3
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

// Mode selects what the binary does with a parsed configuration.
type Mode int

const (
	ModeRun Mode = iota
	ModeTree
	ModeWatch
)

// Invocation is the result of a successful parse.
type Invocation struct {
	Config *app.Config
	Mode   Mode
}

// Parse processes command-line arguments. It returns a populated Invocation,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("modgen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
modgen - An incremental meta-build generator for framework/module trees.

Usage:
  modgen [options] [SCAN_DIR]

Arguments:
  SCAN_DIR
    Directory holding Build.hcl and the frameworks directory.

Exit codes:
  0  build description is current
  1  fatal error
  2  invalid usage
  3  build description regenerated, restart the build

Options:
`)
		flagSet.PrintDefaults()
	}

	scanFlag := flagSet.String("scan", "", "Path to the scan directory.")
	sFlag := flagSet.String("s", "", "Path to the scan directory (shorthand).")
	outFlag := flagSet.String("out", "", "Output directory. Defaults to the project's out_dir.")
	compilerNameFlag := flagSet.String("compiler-name", "unknown", "Compiler identity name. A change deletes existing builds.")
	compilerVersionFlag := flagSet.String("compiler-version", "unknown", "Compiler identity version. A change deletes existing builds.")
	logFormatFlag := flagSet.String("log-format", "auto", "Log output format. Options: 'text', 'json' or 'auto'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 1, "Number of concurrent emission workers.")
	strictFlag := flagSet.Bool("strict", true, "Fail on dependency cycles instead of warning.")
	cleanFlag := flagSet.Bool("clean", false, "Delete previous builds and regenerate everything.")
	skipFetchFlag := flagSet.Bool("skip-fetch-builds", false, "Record fetch state without building fetched content.")
	treeFlag := flagSet.Bool("tree", false, "Print the dependency tree and exit.")
	watchFlag := flagSet.Bool("watch", false, "Run again whenever a descriptor changes.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *scanFlag != "" {
		path = *scanFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Scan path determined.", "path", path)

	if path == "" {
		slog.Debug("No scan path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "text", "json", "auto":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text', 'json' or 'auto'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	mode := ModeRun
	switch {
	case *treeFlag && *watchFlag:
		return nil, false, &ExitError{Code: ExitUsage, Message: "-tree and -watch cannot be combined"}
	case *treeFlag:
		mode = ModeTree
	case *watchFlag:
		mode = ModeWatch
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ScanDir:         path,
		OutDir:          *outFlag,
		CompilerName:    *compilerNameFlag,
		CompilerVersion: *compilerVersionFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Workers:         *workersFlag,
		Strict:          *strictFlag,
		Clean:           *cleanFlag,
		SkipFetchBuilds: *skipFetchFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config, "mode", mode)
	return &Invocation{Config: config, Mode: mode}, false, nil
}
