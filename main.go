package main

import (
	"os"

	"github.com/spigell/match-responder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
