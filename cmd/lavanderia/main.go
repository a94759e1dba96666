// Package main is the entry point for the laundry order service. The
// serve command loads configuration, connects to PostgreSQL (and Valkey
// when configured), and runs the HTTP API with graceful shutdown.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
