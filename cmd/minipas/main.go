package main

import (
	"os"

	"minipas/cmd/minipas/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
