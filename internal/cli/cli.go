package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/provisiongrid/internal/app"
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

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("provisiongrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
provisiongrid - Provision interdependent components in dependency order.

Usage:
  provisiongrid [options] [PLAN_PATH...]

Arguments:
  PLAN_PATH
    Path to a plan file (.hcl, .yaml, .yml) or a directory of plan files.

Variables:
  Plan variables resolve from, in increasing precedence: the variable's
  default, the selected environment's variables, PGRID_VAR_<name> process
  environment variables, and -var flags.

Exit codes:
  0 success, 1 other error, 2 usage or configuration error, 3 invalid plan,
  4 provisioning failed, 5 cancelled, 6 internal error.

Options:
`)
		flagSet.PrintDefaults()
	}

	planFlag := flagSet.String("plan", "", "Path to the plan file or directory.")
	pFlag := flagSet.String("p", "", "Path to the plan file or directory (shorthand).")
	envFlag := flagSet.String("env", "", "Environment to provision into. Optional when the plan declares at most one.")
	eFlag := flagSet.String("e", "", "Environment to provision into (shorthand).")
	var vars stringList
	flagSet.Var(&vars, "var", "Set a plan variable, name=value. May be repeated.")
	workersFlag := flagSet.Int("workers", 1, "Number of concurrent provisioning calls. 1 provisions strictly in plan order.")
	reportFlag := flagSet.String("report", "", "Write a report of the run to this file.")
	reportFormatFlag := flagSet.String("report-format", "json", "Report format. Options: 'json' or 'hcl' (variable blocks for a follow-up plan).")
	validateOnlyFlag := flagSet.Bool("validate-only", false, "Validate the plan and print its execution waves without provisioning.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health and status server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var paths []string
	switch {
	case *planFlag != "":
		paths = append(paths, *planFlag)
	case *pFlag != "":
		paths = append(paths, *pFlag)
	}
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Plan paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No plan path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	env := *envFlag
	if env == "" {
		env = *eFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid workers: must be at least 1"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PlanPaths:       paths,
		Environment:     env,
		Vars:            vars,
		Workers:         *workersFlag,
		ValidateOnly:    *validateOnlyFlag,
		ReportPath:      *reportFlag,
		ReportFormat:    strings.ToLower(*reportFormatFlag),
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
