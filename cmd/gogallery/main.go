// Command gogallery serves a directory of images as a scrolling gallery and
// browses such a gallery from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rshade/gogallery/internal/cli"
	"github.com/rshade/gogallery/pkg/version"
)

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.ExecuteContext(context.Background())
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
