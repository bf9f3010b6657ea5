package runtime

import (
	"fmt"
	"math"
	"strings"
)

// MaxLength bounds the size of strings and arrays built from a requested
// count.
const MaxLength = 1 << 26

// BinaryOp applies a binary operator to two evaluated operands. The logical
// operators are accepted in their eager form; the executor short-circuits
// before calling this.
func BinaryOp(op string, left, right Value) (Value, error) {
	switch op {
	case "+":
		return add(left, right)
	case "-", "/", "%":
		l, r, err := numbers(op, left, right)
		if err != nil {
			return nil, err
		}
		switch op {
		case "-":
			return Number(l - r), nil
		case "/":
			return Number(l / r), nil
		default:
			return Number(math.Mod(l, r)), nil
		}
	case "*":
		return multiply(left, right)
	case "&", "|", "^", "<<", ">>", ">>>":
		l, r, err := numbers(op, left, right)
		if err != nil {
			return nil, err
		}
		return Number(bitwise(op, int64(l), int64(r))), nil
	case "==":
		return Bool(Equal(left, right)), nil
	case "!=":
		return Bool(!Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		cmp, err := Compare(op, left, right)
		if err != nil {
			return nil, err
		}
		switch op {
		case "<":
			return Bool(cmp < 0), nil
		case "<=":
			return Bool(cmp <= 0), nil
		case ">":
			return Bool(cmp > 0), nil
		default:
			return Bool(cmp >= 0), nil
		}
	case "&&":
		return Bool(Truthy(left) && Truthy(right)), nil
	case "||":
		return Bool(Truthy(left) || Truthy(right)), nil
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

// UnaryOp applies a prefix operator.
func UnaryOp(op string, operand Value) (Value, error) {
	switch op {
	case "!":
		return Bool(!Truthy(operand)), nil
	case "-", "+", "~":
		n, ok := operand.(NumberValue)
		if !ok {
			return nil, &TypeError{Function: "operator " + op, Expected: []Kind{KindNumber}, Got: operand.Kind()}
		}
		switch op {
		case "-":
			return Number(-n.Val), nil
		case "~":
			return Number(float64(^int64(n.Val))), nil
		default:
			return n, nil
		}
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

// Compare orders two numbers or two strings.
func Compare(op string, left, right Value) (int, error) {
	switch l := left.(type) {
	case NumberValue:
		if r, ok := right.(NumberValue); ok {
			switch {
			case l.Val < r.Val:
				return -1, nil
			case l.Val > r.Val:
				return 1, nil
			case l.Val == r.Val:
				return 0, nil
			}
			// NaN is unordered; make every comparison false.
			if op == "<" || op == "<=" {
				return 1, nil
			}
			return -1, nil
		}
		return 0, &TypeError{Function: "operator " + op, Arg: 2, Expected: []Kind{KindNumber}, Got: right.Kind()}
	case StringValue:
		if r, ok := right.(StringValue); ok {
			return strings.Compare(l.Val, r.Val), nil
		}
		return 0, &TypeError{Function: "operator " + op, Arg: 2, Expected: []Kind{KindString}, Got: right.Kind()}
	}
	return 0, &TypeError{Function: "operator " + op, Arg: 1, Expected: []Kind{KindNumber, KindString}, Got: left.Kind()}
}

func add(left, right Value) (Value, error) {
	switch l := left.(type) {
	case NumberValue:
		if r, ok := right.(NumberValue); ok {
			return Number(l.Val + r.Val), nil
		}
	case *ArrayValue:
		out := l.Copy()
		out.Elements = append(out.Elements, right)
		return out, nil
	case *MapValue:
		if r, ok := right.(*MapValue); ok {
			out := l.Copy()
			var err error
			r.Range(func(k, v Value) bool {
				err = out.Set(k, v)
				return err == nil
			})
			return out, err
		}
	}
	if left.Kind() == KindString || right.Kind() == KindString {
		return String(Format(left) + Format(right)), nil
	}
	if _, ok := left.(*MapValue); ok {
		return nil, &TypeError{Function: "operator +", Arg: 2, Expected: []Kind{KindMap, KindString}, Got: right.Kind()}
	}
	if left.Kind() == KindNumber {
		return nil, &TypeError{Function: "operator +", Arg: 2, Expected: []Kind{KindNumber, KindString}, Got: right.Kind()}
	}
	return nil, &TypeError{Function: "operator +", Arg: 1, Expected: []Kind{KindNumber, KindString, KindArray, KindMap}, Got: left.Kind()}
}

func multiply(left, right Value) (Value, error) {
	if s, ok := left.(StringValue); ok {
		return repeat(s, right)
	}
	if s, ok := right.(StringValue); ok {
		if _, isNum := left.(NumberValue); isNum {
			return repeat(s, left)
		}
	}
	l, r, err := numbers("*", left, right)
	if err != nil {
		return nil, err
	}
	return Number(l * r), nil
}

func repeat(s StringValue, count Value) (Value, error) {
	n, ok := count.(NumberValue)
	if !ok {
		return nil, &TypeError{Function: "operator *", Arg: 2, Expected: []Kind{KindNumber}, Got: count.Kind()}
	}
	if n.Val < 0 || !n.IsIntegral() {
		return nil, fmt.Errorf("operator *: repeat count must be a non-negative integer, got %s", Format(n))
	}
	if s.Val == "" {
		return s, nil
	}
	if n.Val > float64(MaxLength/len(s.Val)) {
		return nil, fmt.Errorf("operator *: repeating a string of length %d %s times exceeds %d bytes", len(s.Val), Format(n), MaxLength)
	}
	return String(strings.Repeat(s.Val, int(n.Val))), nil
}

func numbers(op string, left, right Value) (float64, float64, error) {
	l, ok := left.(NumberValue)
	if !ok {
		return 0, 0, &TypeError{Function: "operator " + op, Arg: 1, Expected: []Kind{KindNumber}, Got: left.Kind()}
	}
	r, ok := right.(NumberValue)
	if !ok {
		return 0, 0, &TypeError{Function: "operator " + op, Arg: 2, Expected: []Kind{KindNumber}, Got: right.Kind()}
	}
	return l.Val, r.Val, nil
}

func bitwise(op string, l, r int64) float64 {
	shift := uint64(r) & 63
	switch op {
	case "&":
		return float64(l & r)
	case "|":
		return float64(l | r)
	case "^":
		return float64(l ^ r)
	case "<<":
		return float64(l << shift)
	case ">>":
		return float64(l >> shift)
	default:
		return float64(uint64(l) >> shift)
	}
}
