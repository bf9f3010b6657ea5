package runtime

import (
	"fmt"
	"strings"
)

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Function string
	Expected int
	AtLeast  bool // Expected is a minimum
	Got      int
}

func (e *ArityError) Error() string {
	qualifier := ""
	if e.AtLeast {
		qualifier = "at least "
	}
	noun := "arguments"
	if e.Expected == 1 {
		noun = "argument"
	}
	return fmt.Sprintf("%s: expected %s%d %s, got %d", e.Function, qualifier, e.Expected, noun, e.Got)
}

// TypeError reports an argument or operand of the wrong kind.
type TypeError struct {
	Function string // function or operator name
	Arg      int    // 1-based argument position, 0 when not positional
	Expected []Kind
	Got      Kind
}

func (e *TypeError) Error() string {
	names := make([]string, 0, len(e.Expected))
	for _, k := range e.Expected {
		names = append(names, k.String())
	}
	expected := strings.Join(names, " or ")
	if e.Arg > 0 {
		return fmt.Sprintf("%s: argument %d must be %s, got %s", e.Function, e.Arg, expected, e.Got)
	}
	return fmt.Sprintf("%s: expected %s, got %s", e.Function, expected, e.Got)
}

// CheckArity validates an exact argument count.
func CheckArity(name string, args []Value, expected int) error {
	if len(args) != expected {
		return &ArityError{Function: name, Expected: expected, Got: len(args)}
	}
	return nil
}

// CheckMinArity validates a minimum argument count.
func CheckMinArity(name string, args []Value, min int) error {
	if len(args) < min {
		return &ArityError{Function: name, Expected: min, AtLeast: true, Got: len(args)}
	}
	return nil
}

// Expect fails with a TypeError unless args[index] has one of kinds.
func Expect(name string, args []Value, index int, kinds ...Kind) error {
	got := args[index].Kind()
	for _, k := range kinds {
		if got == k {
			return nil
		}
	}
	return &TypeError{Function: name, Arg: index + 1, Expected: kinds, Got: got}
}
