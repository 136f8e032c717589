package main

import (
	"context"
	"os"

	"timetracker/internal/cli"
)

// Version information injected via ldflags
var version = "dev"

func main() {
	cli.Version = version
	os.Exit(cli.Execute(context.Background()))
}
