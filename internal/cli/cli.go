package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/pumpgrid/internal/app"
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

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pumpgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
pumpgrid - An incremental computation graph driven by HCL manifests.

Usage:
  pumpgrid [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var sets, outputs stringList
	graphFlag := flagSet.String("graph", "", "Path to the graph file or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.Var(&sets, "set", "Inject a value as name=<hcl expression>. Repeatable.")
	flagSet.Var(&outputs, "output", "Mark a quantity as wanted before the first pump. Repeatable.")
	whatIfFlag := flagSet.Bool("what-if", false, "Evaluate -set and -output without keeping their effect.")
	dotFlag := flagSet.Bool("dot", false, "Print the graph in Graphviz DOT format and exit.")
	asyncFlag := flagSet.Bool("async", false, "Run nodes flagged async on the background executor.")
	watchFlag := flagSet.Duration("watch", 0, "Pump step-wise on this interval instead of once.")
	ticksFlag := flagSet.Int("ticks", 0, "Number of watch ticks. 0 runs until interrupted.")
	envPrefixFlag := flagSet.String("env-prefix", "", "Expose environment variables with this prefix as 'env'. Empty disables.")
	dedupFlag := flagSet.String("dedup", "message", "Repeated failure policy. Options: 'message', 'node', 'node+message'.")
	orderFlag := flagSet.String("order", "strict", "Out-of-order registration policy. Options: 'strict' or 'lenient'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
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
		GraphPath:       path,
		Sets:            sets,
		Outputs:         outputs,
		WhatIf:          *whatIfFlag,
		DOT:             *dotFlag,
		Async:           *asyncFlag,
		Watch:           *watchFlag,
		Ticks:           *ticksFlag,
		EnvPrefix:       *envPrefixFlag,
		Dedup:           strings.ToLower(*dedupFlag),
		Order:           strings.ToLower(*orderFlag),
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
