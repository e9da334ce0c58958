package main

import (
	"os"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
