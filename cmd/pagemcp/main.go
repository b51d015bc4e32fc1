// cmd/pagemcp/main.go
package main

import (
	"github.com/mwiater/pagemcp/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

var (
	setVersionInfo = cli.SetVersionInfo
	executeCmd     = cli.Execute
)

// main records the build version and hands off to the cobra root command.
func main() {
	setVersionInfo(version)
	executeCmd()
}
