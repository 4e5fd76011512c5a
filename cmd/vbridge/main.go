package main

import (
	"fmt"
	"os"

	"visionbridge/pkg/visionbridge/cvengine"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := newRootCmd(cvengine.New())
	cmd.SetArgs(args)
	return cmd.Execute()
}
