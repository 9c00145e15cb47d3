// cmd/krino/main.go
package main

import (
	cmd "github.com/mwiater/krino/internal/cli"
)

// Build-time variables injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Seams for testing the wiring without running the CLI.
var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
)

// main starts the krino CLI application by delegating to the cobra root
// command. It does not take any arguments and does not return a value.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
