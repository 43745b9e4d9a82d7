package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/openclusterclaw/clawctl/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = fmt.Errorf("panic recovered")
		}
	}()

	cfg, err := config.NewFromFile("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	root, err := newRootCommand(cfg)
	if err != nil {
		return err
	}
	return root.Execute()
}
