package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rowfinder/rowfinder/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return cli.Execute(ctx, cli.Options{Version: version}, os.Args[1:], os.Stderr)
}
