package main

import (
	"os"

	"github.com/maxpv/expman/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
