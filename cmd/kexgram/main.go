package main

import (
	"os"

	"kexgram/cmd/kexgram/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
