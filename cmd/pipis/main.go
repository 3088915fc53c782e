package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/pipis/internal/cli"
	"github.com/arthur-debert/pipis/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, cli.DefaultDeps(), os.Args[1:])
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps the outcome of a run to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsErrorCode(err, errors.ErrUsage):
		return 2
	default:
		return 1
	}
}
