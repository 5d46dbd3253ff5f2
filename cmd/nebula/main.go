package main

import (
	"fmt"
	"os"

	"github.com/nebula-desktop/nebula/internal/cmd"
)

// Set with -ldflags "-X main.version=... -X main.buildMode=release".
var (
	version   = "dev"
	commit    = "none"
	date      = "unknown"
	buildMode = "debug"
)

func main() {
	err := cmd.Execute(cmd.BuildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuildMode: buildMode,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
