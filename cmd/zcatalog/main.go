// Package main provides the entry point for the zcatalog CLI tool.
package main

import (
	"github.com/specsurvey/zcatalog/cmd/zcatalog/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
