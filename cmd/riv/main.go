// Command riv streams delimited files through relays into sinks.
//
//	riv parse people.csv
//	riv analyze people.csv
//	riv publish -k sqlite -o people.db --sink.table people people.csv
//	riv serve -p 8080
//	riv version
//
// Configuration comes from riv.yml, a .env file, RIV_* environment
// variables and flags, in increasing precedence.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/riv/errors"
)

const usage = `Usage: riv <command> [flags] [path]

Commands:
  parse     run a file through the configured relays into the sink (console by default)
  analyze   count the atoms of a file by type
  publish   write a file into a durable sink (csv, json, sqlite, kafka, relational)
  serve     start the HTTP control server
  version   print the version

Run "riv <command> --help" for the flags of a command.
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code: 0 on
// success, 1 on a failed command and 2 on a usage error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "parse":
		err = runParse(ctx, args[1:], stdout, stderr)
	case "analyze":
		err = runAnalyze(ctx, args[1:], stdout, stderr)
	case "publish":
		err = runPublish(ctx, args[1:], stdout, stderr)
	case "serve":
		err = runServe(ctx, args[1:], stderr)
	case "version", "--version", "-v":
		err = runVersion(stdout)
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "riv: unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case err == errHelp:
		return 0
	case isUsage(err):
		fmt.Fprintf(stderr, "riv: %v\n", err)
		return 2
	default:
		fmt.Fprintln(stderr, formatError(err))
		return 1
	}
}

// formatError renders err as "riv: CODE: message". IO errors carry their
// kind, as in "riv: IO(not_found): ...".
func formatError(err error) string {
	appErr := errors.Wrap(err)
	code := string(appErr.Code)
	if appErr.Code == errors.ErrCodeIO && appErr.IOKind != "" {
		code = fmt.Sprintf("%s(%s)", appErr.Code, appErr.IOKind)
	}
	return fmt.Sprintf("riv: %s: %s", code, appErr.Message)
}
