package main

import (
	"github.com/dawaltconley/zotero-center-pdf/internal/cli"
	"github.com/dawaltconley/zotero-center-pdf/internal/cli/cmd"
)

// Build information set via ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cmd.SetBuildInfo(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    buildDate,
	})
	cmd.Execute()
}
