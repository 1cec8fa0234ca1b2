// Command lfmq exercises the lock-free control queue.
package main

import (
	"os"

	"github.com/FerroO2000/lfmq/cmd/lfmq/commands"
)

// Version information, set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
