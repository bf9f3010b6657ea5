package interpreter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// MaxCallDepth bounds nested user function calls.
const MaxCallDepth = 10000

// ArgsVariable is the global array holding the program's command-line
// arguments.
const ArgsVariable = "ARGS"

// Includer resolves the path of an `include` statement to source text.
type Includer interface {
	Include(path string) (string, error)
}

// Interpreter executes OwnLang programs. It owns the global scope, the
// function registry and the set of loaded modules; it is not safe for
// concurrent use.
type Interpreter struct {
	global    *runtime.Environment
	functions *runtime.Functions
	modules   map[string]runtime.Module
	loaded    map[string]bool
	out       io.Writer
	includer  Includer
	including map[string]bool
	depth     int
}

// New returns an interpreter with an empty global environment, an empty
// registry and no known modules. Output goes to stdout.
func New() *Interpreter {
	return &Interpreter{
		global:    runtime.NewEnvironment(nil),
		functions: runtime.NewFunctions(),
		modules:   make(map[string]runtime.Module),
		loaded:    make(map[string]bool),
		out:       os.Stdout,
		including: make(map[string]bool),
	}
}

// GlobalEnvironment returns the interpreter’s global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Functions returns the registry shared by modules and declarations.
func (i *Interpreter) Functions() *runtime.Functions {
	return i.functions
}

// SetOutput redirects print and println.
func (i *Interpreter) SetOutput(w io.Writer) {
	i.out = w
}

// SetIncluder installs the resolver used by include statements.
func (i *Interpreter) SetIncluder(inc Includer) {
	i.includer = inc
}

// SetArgs exposes command-line arguments as the ARGS global.
func (i *Interpreter) SetArgs(args []string) {
	values := make([]runtime.Value, len(args))
	for idx, arg := range args {
		values[idx] = runtime.String(arg)
	}
	i.global.Define(ArgsVariable, runtime.NewArray(values...))
}

// RegisterModule makes a module available to `use`. It is not initialized
// until a program asks for it.
func (i *Interpreter) RegisterModule(name string, module runtime.Module) {
	i.modules[name] = module
}

// RegisterModules registers every entry of a catalog.
func (i *Interpreter) RegisterModules(catalog map[string]runtime.Module) {
	for name, module := range catalog {
		i.RegisterModule(name, module)
	}
}

// LoadModule initializes a registered module. Loading a module twice is a
// no-op.
func (i *Interpreter) LoadModule(name string) error {
	if i.loaded[name] {
		return nil
	}
	module, ok := i.modules[name]
	if !ok {
		return fmt.Errorf("%w '%s'", ErrUnknownModule, name)
	}
	module.Init(i.functions)
	i.loaded[name] = true
	return nil
}

// Loaded reports whether a module has been initialized.
func (i *Interpreter) Loaded(name string) bool {
	return i.loaded[name]
}

// Hoist initializes every module named by a `use` anywhere in program, then
// registers every `def` declaration with the global scope as its closure.
// Modules come first so declarations replace same-named natives.
func (i *Interpreter) Hoist(program ast.Statement) error {
	var (
		uses []*ast.UseStatement
		defs []*ast.FunctionDefinition
	)
	ast.Walk(program, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.UseStatement:
			uses = append(uses, node)
		case *ast.FunctionDefinition:
			defs = append(defs, node)
		}
		return true
	})
	for _, use := range uses {
		for _, name := range use.Modules {
			if err := i.LoadModule(name); err != nil {
				return fail(use, err)
			}
		}
	}
	for _, def := range defs {
		i.declare(def, i.global)
	}
	return nil
}

// Execute runs program in the global scope. A `stop` anywhere returns
// ErrStopped.
func (i *Interpreter) Execute(program ast.Statement) error {
	c, err := i.execute(program, i.global)
	if err != nil {
		return err
	}
	return topLevel(c)
}

// Run hoists and executes program, treating `stop` as normal completion.
func (i *Interpreter) Run(program ast.Statement) error {
	if err := i.Hoist(program); err != nil {
		return err
	}
	if err := i.Execute(program); err != nil && !errors.Is(err, ErrStopped) {
		return err
	}
	return nil
}

// Call invokes a registered function by name.
func (i *Interpreter) Call(name string, args ...runtime.Value) (runtime.Value, error) {
	fn, ok := i.functions.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown function '%s'", name)
	}
	return fn.Execute(args...)
}

func (i *Interpreter) declare(def *ast.FunctionDefinition, closure *runtime.Environment) {
	i.functions.Set(def.ID.Name, i.newFunction(def.ID.Name, def.Params, def.Body, closure))
}

// topLevel converts the completion of a whole program into its error.
func topLevel(c completion) error {
	switch c.kind {
	case completeHalt:
		return ErrStopped
	case completeReturn:
		return failf(c.node, "return outside function")
	case completeBreak:
		return failf(c.node, "break outside loop")
	case completeContinue:
		return failf(c.node, "continue outside loop")
	}
	return nil
}
