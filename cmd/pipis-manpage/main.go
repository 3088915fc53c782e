package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/pipis/internal/cli"
	"github.com/arthur-debert/pipis/internal/version"
)

func main() {
	rootCmd := cli.NewRootCmd(cli.DefaultDeps())

	header := &doc.GenManHeader{
		Title:   "PIPIS",
		Section: "1",
		Source:  "pipis " + version.Version,
		Manual:  "pipis manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
