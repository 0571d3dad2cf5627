package main

import (
	"context"
	"fmt"
	"os"

	"todo/internal/cli"
	"todo/internal/config"
)

func main() {
	// Storage backend depends on TODO_ENV and the resolved configuration
	env := config.GetEnvironment()
	root := cli.NewRootCommand(config.NewLoader(), cli.DefaultOpener(env))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
