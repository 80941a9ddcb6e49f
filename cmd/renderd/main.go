package main

import (
	"os"

	"github.com/autocaps/renderd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
