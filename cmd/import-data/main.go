// Package main implements import-data, a development tool that loads tours
// from a JSON file into the configured database or deletes all of them.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(openTourService).Execute(); err != nil {
		os.Exit(1)
	}
}
