package main

import (
	"fmt"
	"os"

	"github.com/asaidimu/go-colfilter/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "colfilter: %v\n", err)
		os.Exit(1)
	}
}
