// Package main provides the entry point for the dropaudit CLI tool.
package main

import "github.com/nfdtools/dropaudit/cmd/dropaudit/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
