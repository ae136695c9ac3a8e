// Package main provides the townledger CLI.
package main

import (
	"os"

	"github.com/townworks/townledger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
