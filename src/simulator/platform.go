package simulator

import (
	"fmt"

	"npusim/src/misc"
)

type Platform interface {
	Init(command_line_parser *misc.CommandLineParser)
	Fini()
	IsFinished() bool
	Cycle()
	Dump()
}

func newPlatformForName(name string) Platform {
	switch name {
	case "batch":
		return new(BatchPlatform)
	default:
		panic(fmt.Sprintf("unsupported platform: %s", name))
	}
}
