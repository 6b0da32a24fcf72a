// Command shelfview browses an e-book library in the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/shelfview/internal/cli"
	"github.com/rshade/shelfview/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	return exitCode(root.ExecuteContext(ctx))
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	return cli.ExitCode(err)
}
