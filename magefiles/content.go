//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func binary() string {
	return filepath.Join(binDir, binName)
}

// Serve builds the binary and starts the HTTP API.
func Serve() error {
	mg.Deps(Build, Init)
	return sh.RunV(binary(), "serve")
}

// Plan prints the scheduler plan for refresh page 0.
func Plan() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "plan")
}

// Resources generates one batch of resources. Set BATCH to pick the refresh page.
func Resources() error {
	mg.Deps(Build, Init)
	batch := os.Getenv("BATCH")
	if batch == "" {
		batch = "0"
	}
	return sh.RunV(binary(), "run", "--batch", batch)
}

// Export writes the content database to data/export in YAML and JSON.
func Export() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "export", "--format", "both")
}
