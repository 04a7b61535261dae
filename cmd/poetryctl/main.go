package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakura-poetry/poetryctl/internal/cmd"
	"github.com/sakura-poetry/poetryctl/internal/exitcode"
)

func main() {
	// Cancel in-flight requests on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	exitcode.Exit(code)
}
