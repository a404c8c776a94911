package misc

import (
	"errors"
	"fmt"
)

type CommandLineValidator struct {
	command_line_parser *CommandLineParser
}

func (this *CommandLineValidator) Init(command_line_parser *CommandLineParser) {
	this.command_line_parser = command_line_parser
}

func (this *CommandLineValidator) Validate() {
	if this.command_line_parser.StringParameter("data_dirpath") == "" {
		err := errors.New("data_dirpath is empty")
		panic(err)
	}

	if this.command_line_parser.IntParameter("num_images") <= 0 {
		err := errors.New("num_images <= 0")
		panic(err)
	}

	if this.command_line_parser.IntParameter("tick_budget") <= 0 {
		err := errors.New("tick_budget <= 0")
		panic(err)
	}

	if this.command_line_parser.IntParameter("verbose") < 0 {
		err := errors.New("verbose < 0")
		panic(err)
	}

	platform := this.command_line_parser.StringParameter("platform")
	if platform != "batch" {
		err := fmt.Errorf("platform %s is not supported", platform)
		panic(err)
	}
}
