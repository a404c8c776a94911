package misc

import (
	"fmt"
	"strconv"
	"strings"
)

type OptionKind int

const (
	INT OptionKind = iota
	STRING
	BOOL
)

type option struct {
	kind          OptionKind
	name          string
	default_value string
	value         string
	help_msg      string
}

// CommandLineParser holds a flat option table. Options are given as
// "--name value" or "--name=value"; bare flags such as --help are recorded
// and queried through IsArgSet.
type CommandLineParser struct {
	options       map[string]*option
	option_names  []string
	flags         map[string]bool
	program_name  string
	leftover_args []string
}

func (this *CommandLineParser) Init() {
	this.options = make(map[string]*option)
	this.option_names = make([]string, 0)
	this.flags = make(map[string]bool)
	this.leftover_args = make([]string, 0)
}

func (this *CommandLineParser) AddOption(kind OptionKind, name string, default_value string, help_msg string) {
	if _, found := this.options[name]; found {
		panic(fmt.Errorf("option %s is already registered", name))
	}

	this.options[name] = &option{
		kind:          kind,
		name:          name,
		default_value: default_value,
		value:         default_value,
		help_msg:      help_msg,
	}
	this.option_names = append(this.option_names, name)
}

func (this *CommandLineParser) Parse(args []string) {
	if len(args) > 0 {
		this.program_name = args[0]
		args = args[1:]
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			this.leftover_args = append(this.leftover_args, arg)
			continue
		}

		name := strings.TrimPrefix(arg, "--")
		value := ""
		has_value := false
		if eq := strings.Index(name, "="); eq >= 0 {
			value = name[eq+1:]
			name = name[:eq]
			has_value = true
		}

		this.flags[name] = true

		opt, found := this.options[name]
		if !found {
			continue
		}

		if !has_value {
			if opt.kind == BOOL {
				value = "true"
			} else {
				if i+1 >= len(args) {
					panic(fmt.Errorf("option %s is missing a value", name))
				}
				i++
				value = args[i]
			}
		}
		opt.value = value
	}
}

func (this *CommandLineParser) IsArgSet(name string) bool {
	return this.flags[name]
}

func (this *CommandLineParser) IntParameter(name string) int64 {
	opt := this.mustOption(name, INT)
	value, err := strconv.ParseInt(opt.value, 10, 64)
	if err != nil {
		panic(fmt.Errorf("option %s: %q is not an integer", name, opt.value))
	}
	return value
}

func (this *CommandLineParser) StringParameter(name string) string {
	return this.mustOption(name, STRING).value
}

func (this *CommandLineParser) BoolParameter(name string) bool {
	opt := this.mustOption(name, BOOL)
	switch strings.ToLower(opt.value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		panic(fmt.Errorf("option %s: %q is not a bool", name, opt.value))
	}
}

func (this *CommandLineParser) mustOption(name string, kind OptionKind) *option {
	opt, found := this.options[name]
	if !found {
		panic(fmt.Errorf("option %s is not registered", name))
	}
	if opt.kind != kind {
		panic(fmt.Errorf("option %s queried with the wrong kind", name))
	}
	return opt
}

func (this *CommandLineParser) StringifyHelpMsgs() string {
	var builder strings.Builder
	for _, name := range this.option_names {
		opt := this.options[name]
		builder.WriteString(fmt.Sprintf("--%s (default: %s)\n    %s\n", opt.name, opt.default_value, opt.help_msg))
	}
	return builder.String()
}

func (this *CommandLineParser) StringifyOptions() string {
	parts := make([]string, 0, len(this.option_names))
	for _, name := range this.option_names {
		parts = append(parts, fmt.Sprintf("--%s %s", name, this.options[name].value))
	}
	return strings.Join(parts, " ")
}

func (this *CommandLineParser) StringifyArgs() string {
	return strings.Join(append([]string{this.program_name}, this.leftover_args...), " ")
}
