// Package main is the entry point for the marketplace connections service.
package main

import (
	"os"

	"github.com/donaldgifford/marketplace-connections/cmd/marketplace-connections/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
