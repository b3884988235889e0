// Package main is the entry point for the mpc CLI client.
package main

import "github.com/donaldgifford/marketplace-connections/cmd/mpc/cmd"

func main() {
	cmd.Execute()
}
