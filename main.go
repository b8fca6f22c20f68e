package main

import (
	"os"

	"github.com/graphpane/graphpane/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
