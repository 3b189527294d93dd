// Package main provides the entry point for the pairscan CLI.
package main

import (
	"os"

	"github.com/pairscan/pairscan/pkg/pairscan/logging"
)

func main() {
	err := Execute()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
