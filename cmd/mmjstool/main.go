package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattermost/mmjstool/pkg/i18n"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	defer a.close()

	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return exitCode(cmd.Execute(), stderr)
}

// exitCode maps a command error to a process exit code. Check failures
// have already been reported and exit 1 silently.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, i18n.ErrChangesFound), errors.Is(err, i18n.ErrEmptyTranslations):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
