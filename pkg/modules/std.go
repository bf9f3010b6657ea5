package modules

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// Std registers the general purpose natives. echo writes to out.
func Std(out io.Writer) runtime.Module {
	return runtime.ModuleFunc(func(functions *runtime.Functions) {
		functions.Register(runtime.NativeFunction{Name: "echo", Arity: -1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			parts := make([]string, len(args))
			for idx, arg := range args {
				parts[idx] = runtime.Format(arg)
			}
			_, err := fmt.Fprintln(out, strings.Join(parts, " "))
			return runtime.Null, err
		}})
		functions.Register(runtime.NativeFunction{Name: "length", Arity: 1, Impl: length})
		functions.Register(runtime.NativeFunction{Name: "newarray", Arity: -1, Impl: newArray})
		functions.Register(runtime.NativeFunction{Name: "rand", Arity: -1, Impl: random})
		functions.Register(runtime.NativeFunction{Name: "time", Arity: 0, Impl: func([]runtime.Value) (runtime.Value, error) {
			return runtime.Number(float64(time.Now().UnixMilli())), nil
		}})
		functions.Register(runtime.NativeFunction{Name: "sleep", Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			ms, err := num("sleep", args, 0)
			if err != nil {
				return nil, err
			}
			time.Sleep(time.Duration(ms * float64(time.Millisecond)))
			return runtime.Null, nil
		}})
		functions.Register(runtime.NativeFunction{Name: "sprintf", Arity: -1, Impl: sprintf})
		functions.Register(runtime.NativeFunction{Name: "substring", Arity: -1, Impl: substring})
		functions.Register(runtime.NativeFunction{Name: "charAt", Arity: 2, Impl: charAt})
		functions.Register(runtime.NativeFunction{Name: "indexOf", Arity: -1, Impl: indexOf})
		functions.Register(runtime.NativeFunction{Name: "split", Arity: 2, Impl: split})
		functions.Register(runtime.NativeFunction{Name: "join", Arity: -1, Impl: join})
		functions.Register(runtime.NativeFunction{Name: "trim", Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			s, err := str("trim", args, 0)
			if err != nil {
				return nil, err
			}
			return runtime.String(strings.TrimSpace(s)), nil
		}})
		functions.Register(runtime.NativeFunction{Name: "toUpperCase", Arity: -1, Impl: caseMapper("toUpperCase", cases.Upper)})
		functions.Register(runtime.NativeFunction{Name: "toLowerCase", Arity: -1, Impl: caseMapper("toLowerCase", cases.Lower)})
	})
}

func length(args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.StringValue:
		return runtime.Number(float64(utf8.RuneCountInString(v.Val))), nil
	case *runtime.ArrayValue:
		return runtime.Number(float64(len(v.Elements))), nil
	case *runtime.MapValue:
		return runtime.Number(float64(v.Len())), nil
	}
	return nil, &runtime.TypeError{
		Function: "length",
		Arg:      1,
		Expected: []runtime.Kind{runtime.KindString, runtime.KindArray, runtime.KindMap},
		Got:      args[0].Kind(),
	}
}

// newArray builds a null-filled array; several sizes nest arrays.
func newArray(args []runtime.Value) (runtime.Value, error) {
	if err := runtime.CheckMinArity("newarray", args, 1); err != nil {
		return nil, err
	}
	sizes := make([]int, len(args))
	total := 1
	for idx := range args {
		n, err := integer("newarray", args, idx)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("newarray: size must be a non-negative integer, got %s", runtime.Format(args[idx]))
		}
		if total *= max(n, 1); total > runtime.MaxLength {
			return nil, fmt.Errorf("newarray: more than %d elements requested", runtime.MaxLength)
		}
		sizes[idx] = n
	}
	return buildArray(sizes), nil
}

func buildArray(sizes []int) *runtime.ArrayValue {
	elements := make([]runtime.Value, sizes[0])
	for idx := range elements {
		if len(sizes) > 1 {
			elements[idx] = buildArray(sizes[1:])
		} else {
			elements[idx] = runtime.Null
		}
	}
	return runtime.NewArray(elements...)
}

// random returns a float in [0, 1), an integer in [0, n) or in [from, to).
func random(args []runtime.Value) (runtime.Value, error) {
	switch len(args) {
	case 0:
		return runtime.Number(rand.Float64()), nil
	case 1, 2:
		from, to := 0.0, 0.0
		var err error
		if len(args) == 1 {
			to, err = num("rand", args, 0)
		} else if from, err = num("rand", args, 0); err == nil {
			to, err = num("rand", args, 1)
		}
		if err != nil {
			return nil, err
		}
		if math.IsNaN(from) || math.IsNaN(to) {
			return nil, fmt.Errorf("rand: bounds must be numbers, got NaN")
		}
		span := int64(to) - int64(from)
		if span <= 0 {
			return nil, fmt.Errorf("rand: empty range [%s, %s)", runtime.Format(runtime.Number(from)), runtime.Format(runtime.Number(to)))
		}
		return runtime.Number(float64(int64(from) + rand.Int63n(span))), nil
	}
	return nil, &runtime.ArityError{Function: "rand", Expected: 2, Got: len(args)}
}

func substring(args []runtime.Value) (runtime.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, &runtime.ArityError{Function: "substring", Expected: 2, AtLeast: true, Got: len(args)}
	}
	s, err := str("substring", args, 0)
	if err != nil {
		return nil, err
	}
	chars := []rune(s)
	from, err := integer("substring", args, 1)
	if err != nil {
		return nil, err
	}
	to := len(chars)
	if len(args) == 3 {
		if to, err = integer("substring", args, 2); err != nil {
			return nil, err
		}
	}
	if from < 0 || to > len(chars) || from > to {
		return nil, fmt.Errorf("substring: range [%d, %d) out of bounds for length %d", from, to, len(chars))
	}
	return runtime.String(string(chars[from:to])), nil
}

// charAt returns the code point at index.
func charAt(args []runtime.Value) (runtime.Value, error) {
	s, err := str("charAt", args, 0)
	if err != nil {
		return nil, err
	}
	index, err := integer("charAt", args, 1)
	if err != nil {
		return nil, err
	}
	chars := []rune(s)
	if index < 0 || index >= len(chars) {
		return nil, fmt.Errorf("charAt: index %d out of range [0, %d)", index, len(chars))
	}
	return runtime.Number(float64(chars[index])), nil
}

// indexOf returns the character index of needle at or after from, or -1.
func indexOf(args []runtime.Value) (runtime.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, &runtime.ArityError{Function: "indexOf", Expected: 2, AtLeast: true, Got: len(args)}
	}
	s, err := str("indexOf", args, 0)
	if err != nil {
		return nil, err
	}
	needle, err := str("indexOf", args, 1)
	if err != nil {
		return nil, err
	}
	from := 0
	if len(args) == 3 {
		f, err := integer("indexOf", args, 2)
		if err != nil {
			return nil, err
		}
		from = max(f, 0)
	}
	chars := []rune(s)
	if from > len(chars) {
		return runtime.Number(-1), nil
	}
	at := strings.Index(string(chars[from:]), needle)
	if at < 0 {
		return runtime.Number(-1), nil
	}
	return runtime.Number(float64(from + utf8.RuneCountInString(string(chars[from:])[:at]))), nil
}

func split(args []runtime.Value) (runtime.Value, error) {
	s, err := str("split", args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := str("split", args, 1)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	elements := make([]runtime.Value, len(parts))
	for idx, part := range parts {
		elements[idx] = runtime.String(part)
	}
	return runtime.NewArray(elements...), nil
}

// join formats array elements separated by an optional delimiter.
func join(args []runtime.Value) (runtime.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, &runtime.ArityError{Function: "join", Expected: 1, AtLeast: true, Got: len(args)}
	}
	if err := runtime.Expect("join", args, 0, runtime.KindArray); err != nil {
		return nil, err
	}
	sep := ""
	if len(args) == 2 {
		var err error
		if sep, err = str("join", args, 1); err != nil {
			return nil, err
		}
	}
	elements := args[0].(*runtime.ArrayValue).Elements
	parts := make([]string, len(elements))
	for idx, el := range elements {
		parts[idx] = runtime.Format(el)
	}
	return runtime.String(strings.Join(parts, sep)), nil
}

// caseMapper maps a string with the case rules of an optional BCP 47
// locale, undetermined by default.
func caseMapper(name string, mapper func(language.Tag, ...cases.Option) cases.Caser) runtime.NativeFunc {
	return func(args []runtime.Value) (runtime.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, &runtime.ArityError{Function: name, Expected: 1, AtLeast: true, Got: len(args)}
		}
		s, err := str(name, args, 0)
		if err != nil {
			return nil, err
		}
		tag := language.Und
		if len(args) == 2 {
			locale, err := str(name, args, 1)
			if err != nil {
				return nil, err
			}
			if tag, err = language.Parse(locale); err != nil {
				return nil, fmt.Errorf("%s: invalid locale %q: %w", name, locale, err)
			}
		}
		return runtime.String(mapper(tag).String(s)), nil
	}
}
