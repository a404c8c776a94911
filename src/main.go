package main

import (
	"fmt"
	"os"

	"npusim/src/misc"
	"npusim/src/simulator"
)

func main() {
	command_line_parser := InitCommandLineParser()
	command_line_parser.Parse(os.Args)

	if command_line_parser.IsArgSet("help") {
		fmt.Printf("%s", command_line_parser.StringifyHelpMsgs())
	} else {
		command_line_validator := new(misc.CommandLineValidator)
		command_line_validator.Init(command_line_parser)
		command_line_validator.Validate()

		simulator_ := new(simulator.Simulator)
		simulator_.Init(command_line_parser)

		for !simulator_.IsFinished() {
			simulator_.Cycle()
		}

		simulator_.Dump()
		simulator_.Fini()
	}
}

func InitCommandLineParser() *misc.CommandLineParser {
	command_line_parser := new(misc.CommandLineParser)
	command_line_parser.Init()

	command_line_parser.AddOption(misc.STRING, "platform", "batch", "platform to simulate")
	command_line_parser.AddOption(misc.STRING, "data_dirpath", "data",
		"directory holding w1.hex/b1.hex/w2.hex/b2.hex, test_imgs.hex and test_labels.txt")
	command_line_parser.AddOption(misc.INT, "num_images", "20", "number of test images to run")
	command_line_parser.AddOption(misc.BOOL, "pipelined", "true",
		"use the registered-operand layer-1 datapath (832 ticks/inference instead of 830)")
	command_line_parser.AddOption(misc.INT, "tick_budget", "2000",
		"ticks allowed per inference before the control FSM is declared stuck")
	command_line_parser.AddOption(misc.INT, "verbose", "0", "verbosity of the simulation output")
	command_line_parser.AddOption(misc.STRING, "out_filepath", "", "optional file for per-image results")

	return command_line_parser
}
