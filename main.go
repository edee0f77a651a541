package main

import (
	"os"

	"github.com/symposia/revdist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
