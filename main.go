package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = ""

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case runMode:
		emuMain(cli.Run)
	case dirMode:
		dirMain(cli.Dir)
	case configMode:
		configMain(cli.Config)
	case ctlMode:
		ctlMain(cli.Ctl)
	case versionMode:
		fmt.Println("sixtyfour", buildVersion())
	}
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}
