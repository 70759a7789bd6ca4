// Command notes-sidecar is a stateless JSON command sidecar for Notes.app.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/notes-sidecar/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], cli.Deps{Stdout: os.Stdout, Stderr: os.Stderr})
	stop()
	os.Exit(code)
}
