// Package main provides tagctl, the tag server's admin CLI.
//
// Usage:
//
//	tagctl token 42
//	tagctl seed tags.yaml
//	tagctl find urg
//	tagctl reindex
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
