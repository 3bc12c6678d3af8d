package main

import (
	"os"

	"ceremony/cmd/ceremony/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
