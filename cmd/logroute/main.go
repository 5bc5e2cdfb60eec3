// Command logroute runs the structured-log query routing service: it
// accepts events over HTTP, evaluates them against configured LQL
// routing rules, and forwards matches to their sinks.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"logroute/cmd/logroute/cli"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := cli.NewRootCommand(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
