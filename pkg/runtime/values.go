package runtime

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

// Int truncates toward zero.
func (v NumberValue) Int() int64 { return int64(v.Val) }

// IsIntegral reports whether the number has no fractional part.
func (v NumberValue) IsIntegral() bool {
	return !math.IsInf(v.Val, 0) && v.Val == math.Trunc(v.Val)
}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

var (
	Null  Value = NullValue{}
	True  Value = BoolValue{Val: true}
	False Value = BoolValue{Val: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(f float64) Value { return NumberValue{Val: f} }

func String(s string) Value { return StringValue{Val: s} }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ArrayValue is shared by reference; element writes are visible to every
// holder.
type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

func NewArray(elements ...Value) *ArrayValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ArrayValue{Elements: elements}
}

// Get returns the element at index, failing outside the array bounds.
func (v *ArrayValue) Get(index Value) (Value, error) {
	i, err := v.position(index)
	if err != nil {
		return nil, err
	}
	return v.Elements[i], nil
}

// Set overwrites the element at index.
func (v *ArrayValue) Set(index Value, value Value) error {
	i, err := v.position(index)
	if err != nil {
		return err
	}
	v.Elements[i] = value
	return nil
}

func (v *ArrayValue) position(index Value) (int, error) {
	num, ok := index.(NumberValue)
	if !ok {
		return 0, fmt.Errorf("array index must be a number, got %s", index.Kind())
	}
	if !num.IsIntegral() {
		return 0, fmt.Errorf("array index %s is not an integer", Format(num))
	}
	i := num.Int()
	if i < 0 || i >= int64(len(v.Elements)) {
		return 0, fmt.Errorf("array index %d out of range [0, %d)", i, len(v.Elements))
	}
	return int(i), nil
}

// Copy returns a shallow copy.
func (v *ArrayValue) Copy() *ArrayValue {
	out := make([]Value, len(v.Elements))
	copy(out, v.Elements)
	return &ArrayValue{Elements: out}
}

type mapKey struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

func keyOf(key Value) (mapKey, error) {
	switch k := key.(type) {
	case NullValue:
		return mapKey{kind: KindNull}, nil
	case BoolValue:
		return mapKey{kind: KindBool, b: k.Val}, nil
	case NumberValue:
		n := k.Val
		if n == 0 {
			n = 0 // fold -0
		}
		return mapKey{kind: KindNumber, n: n}, nil
	case StringValue:
		return mapKey{kind: KindString, s: k.Val}, nil
	default:
		return mapKey{}, fmt.Errorf("map key must be null, boolean, number or string, got %s", key.Kind())
	}
}

// MapValue keeps entries in insertion order. Keys are scalar values.
type MapValue struct {
	keys   []Value
	values []Value
	index  map[mapKey]int
}

func (v *MapValue) Kind() Kind { return KindMap }

func NewMap() *MapValue {
	return &MapValue{index: make(map[mapKey]int)}
}

func (v *MapValue) Len() int { return len(v.keys) }

// Get returns the value stored under key and whether it was present.
func (v *MapValue) Get(key Value) (Value, bool, error) {
	k, err := keyOf(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := v.index[k]
	if !ok {
		return nil, false, nil
	}
	return v.values[i], true, nil
}

// Set inserts or replaces key. Replacing keeps the original position.
func (v *MapValue) Set(key Value, value Value) error {
	k, err := keyOf(key)
	if err != nil {
		return err
	}
	if i, ok := v.index[k]; ok {
		v.values[i] = value
		return nil
	}
	v.index[k] = len(v.keys)
	v.keys = append(v.keys, key)
	v.values = append(v.values, value)
	return nil
}

// Range calls fn for each entry in insertion order until fn returns false.
func (v *MapValue) Range(fn func(key, value Value) bool) {
	for i := range v.keys {
		if !fn(v.keys[i], v.values[i]) {
			return
		}
	}
}

// Copy returns a shallow copy.
func (v *MapValue) Copy() *MapValue {
	out := NewMap()
	v.Range(func(k, val Value) bool {
		_ = out.Set(k, val)
		return true
	})
	return out
}

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// Function is a callable capability, native or user-defined.
type Function interface {
	Execute(args ...Value) (Value, error)
}

// FunctionValue wraps a Function as a first-class value.
type FunctionValue struct {
	Name string // empty for anonymous functions
	Fn   Function
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func NewFunctionValue(name string, fn Function) *FunctionValue {
	return &FunctionValue{Name: name, Fn: fn}
}

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// Truthy applies the language's truthiness rules: false, null, 0 and "" are
// falsy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, NullValue:
		return false
	case BoolValue:
		return val.Val
	case NumberValue:
		return val.Val != 0 && !math.IsNaN(val.Val)
	case StringValue:
		return val.Val != ""
	default:
		return true
	}
}

// Format renders v the way print shows it.
func Format(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil, NullValue:
		b.WriteString("null")
	case BoolValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case NumberValue:
		b.WriteString(ast.FormatNumber(val.Val))
	case StringValue:
		b.WriteString(val.Val)
	case *ArrayValue:
		b.WriteByte('[')
		for i, el := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el)
		}
		b.WriteByte(']')
	case *MapValue:
		b.WriteByte('{')
		first := true
		val.Range(func(k, item Value) bool {
			if !first {
				b.WriteString(", ")
			}
			first = false
			writeValue(b, k)
			b.WriteByte('=')
			writeValue(b, item)
			return true
		})
		b.WriteByte('}')
	case *FunctionValue:
		if val.Name == "" {
			b.WriteString("<function>")
		} else {
			fmt.Fprintf(b, "<function %s>", val.Name)
		}
	default:
		fmt.Fprintf(b, "<%s>", v.Kind())
	}
}

// Equal compares structurally. Values of different kinds are never equal;
// functions compare by identity.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null
	}
	if b == nil {
		b = Null
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch left := a.(type) {
	case NullValue:
		return true
	case BoolValue:
		return left.Val == b.(BoolValue).Val
	case NumberValue:
		return left.Val == b.(NumberValue).Val
	case StringValue:
		return left.Val == b.(StringValue).Val
	case *ArrayValue:
		right := b.(*ArrayValue)
		if left == right {
			return true
		}
		if len(left.Elements) != len(right.Elements) {
			return false
		}
		for i := range left.Elements {
			if !Equal(left.Elements[i], right.Elements[i]) {
				return false
			}
		}
		return true
	case *MapValue:
		right := b.(*MapValue)
		if left == right {
			return true
		}
		if left.Len() != right.Len() {
			return false
		}
		equal := true
		left.Range(func(k, v Value) bool {
			other, ok, _ := right.Get(k)
			if !ok || !Equal(v, other) {
				equal = false
			}
			return equal
		})
		return equal
	case *FunctionValue:
		right := b.(*FunctionValue)
		return left == right || sameFunction(left.Fn, right.Fn)
	}
	return false
}

func sameFunction(a, b Function) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// ToNumber converts scalars the way the `number` builtin does.
func ToNumber(v Value) (float64, bool) {
	switch val := v.(type) {
	case NumberValue:
		return val.Val, true
	case BoolValue:
		if val.Val {
			return 1, true
		}
		return 0, true
	case NullValue:
		return 0, true
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(val.Val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
