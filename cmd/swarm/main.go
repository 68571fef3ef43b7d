package main

import (
	"os"

	"github.com/rustyeddy/swarm/cmd/swarm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
