package vm

import (
	"math"

	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/value"
)

// arithmetic implements Add/Sub/Mul/Div/Mod/Pow. It classifies the operand
// pattern for the specialization cache (so the hotspot detector's JIT
// backend knows which sites are safe to lower to unboxed integer math),
// then does the actual operation in whichever representation is exact: i32
// arithmetic for an IntInt pattern that doesn't overflow, float64
// otherwise.
func (m *VM) arithmetic(pc int, op bytecode.Op, a, b, c uint8) (value.Value, error) {
	left, right := m.getReg(b), m.getReg(c)
	pattern := classify(left, right)
	m.spec.Observe(pc, uint8(op), pattern)

	if pattern == PatternIntInt {
		li, ri := left.AsInteger(), right.AsInteger()
		if v, ok := intArith(op, li, ri); ok {
			return v, nil
		}
		// Overflow (or Div/Mod by zero falls through to the float path,
		// which reports ErrDivisionByZero uniformly below).
	}

	lf, rf := left.AsNumber(), right.AsNumber()
	switch op {
	case bytecode.OpAdd:
		return value.Number(lf + rf), nil
	case bytecode.OpSub:
		return value.Number(lf - rf), nil
	case bytecode.OpMul:
		return value.Number(lf * rf), nil
	case bytecode.OpDiv:
		if rf == 0 {
			return value.Nil(), ErrDivisionByZero
		}
		return value.Number(lf / rf), nil
	case bytecode.OpMod:
		if rf == 0 {
			return value.Nil(), ErrDivisionByZero
		}
		return value.Number(math.Mod(lf, rf)), nil
	case bytecode.OpPow:
		return value.Number(math.Pow(lf, rf)), nil
	default:
		return value.Nil(), nil
	}
}

// classify reports the TypePattern two arithmetic operands exhibit.
func classify(left, right value.Value) TypePattern {
	switch {
	case left.IsInteger() && right.IsInteger():
		return PatternIntInt
	case left.IsNumber() && right.IsNumber():
		return PatternFloatFloat
	case (left.IsInteger() || left.IsNumber()) && (right.IsInteger() || right.IsNumber()):
		return PatternIntFloat
	default:
		return PatternUnknown
	}
}

// intArith performs op in int32 arithmetic, reporting ok=false when the
// result would overflow int32 (Add/Sub/Mul) or the divisor is zero
// (Div/Mod, where the caller's float fallback reports the error), or for
// Pow (always computed in float64, matching float^float semantics).
func intArith(op bytecode.Op, l, r int32) (value.Value, bool) {
	switch op {
	case bytecode.OpAdd:
		sum := int64(l) + int64(r)
		if sum != int64(int32(sum)) {
			return value.Value(0), false
		}
		return value.Integer(int32(sum)), true
	case bytecode.OpSub:
		diff := int64(l) - int64(r)
		if diff != int64(int32(diff)) {
			return value.Value(0), false
		}
		return value.Integer(int32(diff)), true
	case bytecode.OpMul:
		prod := int64(l) * int64(r)
		if prod != int64(int32(prod)) {
			return value.Value(0), false
		}
		return value.Integer(int32(prod)), true
	case bytecode.OpDiv:
		if r == 0 {
			return value.Value(0), false
		}
		if l%r == 0 {
			return value.Integer(l / r), true
		}
		return value.Value(0), false
	case bytecode.OpMod:
		if r == 0 {
			return value.Value(0), false
		}
		return value.Integer(l % r), true
	default:
		return value.Value(0), false
	}
}
