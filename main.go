package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/secmon-lab/foodrec/pkg/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, buildVersion()); err != nil {
		os.Exit(1)
	}
}

// buildVersion prefers the ldflags version and falls back to the module version for go install builds
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
