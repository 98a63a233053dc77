// Package cli turns command-line arguments into a validated app.Config and
// reports usage problems as an ExitError carrying the process exit code.
package cli
