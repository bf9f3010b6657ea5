package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/driver"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/interpreter"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/modules"
)

const cliToolVersion = "ownlang 0.1.0"

// defaultProgram runs when the command is given no arguments at all.
const defaultProgram = "program.own"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		if info, err := os.Stat(defaultProgram); err == nil && !info.IsDir() {
			return runProgram(&options{file: defaultProgram})
		}
		printUsage(os.Stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "deps":
		return runDeps(args[1:])
	}

	opts, err := parseOptions(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		printUsage(os.Stderr)
		return 1
	}
	if opts.repl {
		return runREPL(opts)
	}
	return runProgram(opts)
}

// loadConfig returns the explicit configuration, or the nearest one above
// start. A missing configuration is not an error.
func loadConfig(explicit, start string) (*driver.Config, error) {
	if explicit != "" {
		return driver.LoadConfig(explicit)
	}
	path, err := driver.FindConfig(start)
	if err != nil {
		if errors.Is(err, driver.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadConfig(path)
}

// loadLockfile returns the lockfile of cfg. It is required only when the
// configuration declares dependencies.
func loadLockfile(cfg *driver.Config) (*driver.Lockfile, error) {
	if cfg == nil {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(cfg.LockfilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(cfg.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %s; run `ownlang deps install`", driver.LockfileName, cfg.Path)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", cfg.LockfilePath(), err)
	}
	return lock, nil
}

// includeRoots orders the directories searched by include: the program's
// own directory, configured search paths, locked dependencies, then the
// working directory.
func includeRoots(programDir string, cfg *driver.Config, lock *driver.Lockfile) []string {
	var roots []string
	if programDir != "" {
		roots = append(roots, programDir)
	}
	if cfg != nil {
		roots = append(roots, cfg.IncludeRoots()...)
	}
	roots = append(roots, lock.Dirs()...)
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	return roots
}

// newInterpreter wires output, the module catalog, include resolution,
// ARGS and the configured modules into a fresh interpreter.
func newInterpreter(out io.Writer, cfg *driver.Config, loader *driver.Loader, args []string) (*interpreter.Interpreter, error) {
	interp := interpreter.New()
	interp.SetOutput(out)
	interp.RegisterModules(modules.Builtin(out))
	interp.SetIncluder(loader)
	interp.SetArgs(args)
	if cfg != nil {
		for _, name := range cfg.Modules {
			if err := interp.LoadModule(name); err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(cfg.Path), err)
			}
		}
	}
	return interp, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ownlang [options] [file] [args...]")
	fmt.Fprintln(w, "  ownlang deps install")
	fmt.Fprintln(w, "  ownlang version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -f, --file FILE      run program file")
	fmt.Fprintln(w, "  -r, --repl           interactive REPL")
	fmt.Fprintln(w, "  -o, --optimize N     optimization level (default 0; missing or invalid N = 2)")
	fmt.Fprintln(w, "  -a, --showast        print the AST and the optimized AST")
	fmt.Fprintln(w, "  -t, --showtokens     print tokens")
	fmt.Fprintln(w, "  -m, --showtime       print tokenize/parse/optimize/execute timings")
	fmt.Fprintln(w, "  -c, --config FILE    configuration file (default: nearest "+driver.ConfigFileName+")")
	fmt.Fprintln(w, "  -l, --lint           report suspicious code instead of running it")
	fmt.Fprintln(w, "  -b, --beautify       print the program reformatted")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "With no arguments, %s in the current directory is run if present.\n", defaultProgram)
}
