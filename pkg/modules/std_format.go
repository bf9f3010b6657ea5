package modules

import (
	"fmt"
	"strings"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// sprintf formats with Go verbs. Each argument is converted to the Go type
// its verb expects: %d %x %X %o %b %c to an integer, %e %f %g to a float,
// %t to a bool and everything else to the printed form of the value.
func sprintf(args []runtime.Value) (runtime.Value, error) {
	if err := runtime.CheckMinArity("sprintf", args, 1); err != nil {
		return nil, err
	}
	format, err := str("sprintf", args, 0)
	if err != nil {
		return nil, err
	}
	verbs := formatVerbs(format)
	rest := args[1:]
	converted := make([]any, len(rest))
	for idx, arg := range rest {
		verb := byte('v')
		if idx < len(verbs) {
			verb = verbs[idx]
		}
		converted[idx] = goValue(verb, arg)
	}
	return runtime.String(fmt.Sprintf(format, converted...)), nil
}

// formatVerbs lists the verb letter of every directive that consumes an
// argument, in order. Star widths consume an integer.
func formatVerbs(format string) []byte {
	var verbs []byte
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		i++
		for i < len(format) && strings.IndexByte("+-# 0123456789.*[]", format[i]) >= 0 {
			if format[i] == '*' {
				verbs = append(verbs, 'd')
			}
			i++
		}
		if i < len(format) && format[i] != '%' {
			verbs = append(verbs, format[i])
		}
	}
	return verbs
}

func goValue(verb byte, v runtime.Value) any {
	switch verb {
	case 'd', 'x', 'X', 'o', 'b', 'c', 'U':
		if n, ok := runtime.ToNumber(v); ok {
			if verb == 'c' || verb == 'U' {
				return rune(n)
			}
			return int64(n)
		}
	case 'e', 'E', 'f', 'F', 'g', 'G':
		if n, ok := runtime.ToNumber(v); ok {
			return n
		}
	case 't':
		return runtime.Truthy(v)
	case 'q', 's', 'v':
		return runtime.Format(v)
	}
	return runtime.Format(v)
}
