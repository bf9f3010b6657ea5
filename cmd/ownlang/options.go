package main

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultOptimizeLevel applies when -o is given without a usable level.
const defaultOptimizeLevel = 2

type options struct {
	file        string
	repl        bool
	optimize    int
	optimizeSet bool
	showAST     bool
	showTokens  bool
	showTime    bool
	lint        bool
	beautify    bool
	configPath  string
	args        []string
}

// parseOptions reads flags up to the program file or a "--". Everything
// after either belongs to the program and is exposed as ARGS.
func parseOptions(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-f", "--file":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a file argument", arg)
			}
			i++
			opts.file = args[i]
		case "-c", "--config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a file argument", arg)
			}
			i++
			opts.configPath = args[i]
		case "-o", "--optimize":
			opts.optimizeSet = true
			opts.optimize = defaultOptimizeLevel
			if i+1 < len(args) {
				if n, err := strconv.Atoi(args[i+1]); err == nil {
					i++
					if n >= 0 {
						opts.optimize = n
					}
				}
			}
		case "-r", "--repl":
			opts.repl = true
		case "-a", "--showast":
			opts.showAST = true
		case "-t", "--showtokens":
			opts.showTokens = true
		case "-m", "--showtime":
			opts.showTime = true
		case "-l", "--lint":
			opts.lint = true
		case "-b", "--beautify":
			opts.beautify = true
		case "--":
			opts.args = append([]string(nil), args[i+1:]...)
			return opts, nil
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, fmt.Errorf("unknown option %q", arg)
			}
			return opts.positional(args[i:]), nil
		}
	}
	return opts, nil
}

func (o *options) positional(rest []string) *options {
	if o.file == "" && len(rest) > 0 {
		o.file = rest[0]
		rest = rest[1:]
	}
	o.args = append([]string(nil), rest...)
	return o
}

// effectiveLevel is the command-line level, else the configured one. Lint
// mode never optimizes.
func (o *options) effectiveLevel(configured int) int {
	switch {
	case o.lint:
		return 0
	case o.optimizeSet:
		return o.optimize
	default:
		return configured
	}
}
