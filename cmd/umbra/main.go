package main

import (
	"os"

	"github.com/athanorlabs/go-stealth/cmd/umbra/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
