// Package main is the entry point for the pocketr CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/pocketr/cmd/pocketr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
