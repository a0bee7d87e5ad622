// Package main is the entry point for seqgap, the market data sequence gap analyzer.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/seqgap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
