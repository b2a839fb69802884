package vm

import (
	"fmt"

	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/value"
)

// execute dispatches one decoded instruction. The returned bool is true
// only for the Return that unwinds the outermost frame (Run's termination
// signal); every other instruction returns (Nil, false, err-or-nil).
func (m *VM) execute(pc int, op bytecode.Op, a, b, c uint8, bx uint16) (value.Value, bool, error) {
	switch op {

	case bytecode.OpLoadConst:
		m.setReg(a, m.chunk.Constants[bx])

	case bytecode.OpMove:
		m.setReg(a, m.getReg(b))

	case bytecode.OpDefineGlobal:
		name, err := m.constantName(bx)
		if err != nil {
			return value.Nil(), false, err
		}
		m.globals[name] = m.getReg(a)

	case bytecode.OpGetGlobal:
		name, err := m.constantName(bx)
		if err != nil {
			return value.Nil(), false, err
		}
		v, ok := m.globals[name]
		if !ok {
			return value.Nil(), false, fmt.Errorf("%w: %q", ErrUndefinedGlobal, name)
		}
		m.setReg(a, v)

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpPow:
		v, err := m.arithmetic(pc, op, a, b, c)
		if err != nil {
			return value.Nil(), false, err
		}
		m.setReg(a, v)

	case bytecode.OpLess:
		m.setReg(a, value.Bool(m.getReg(b).AsNumber() < m.getReg(c).AsNumber()))
	case bytecode.OpLessEq:
		m.setReg(a, value.Bool(m.getReg(b).AsNumber() <= m.getReg(c).AsNumber()))
	case bytecode.OpEqual:
		m.setReg(a, value.Bool(m.getReg(b).Equal(m.getReg(c))))

	case bytecode.OpNot:
		m.setReg(a, value.Bool(!m.getReg(b).Truthy()))
	case bytecode.OpNegative:
		operand := m.getReg(b)
		if operand.IsInteger() {
			m.setReg(a, value.Integer(-operand.AsInteger()))
		} else {
			m.setReg(a, value.Number(-operand.AsNumber()))
		}
	case bytecode.OpBitNot:
		m.setReg(a, value.Integer(^m.getReg(b).AsInteger()))
	case bytecode.OpBitAnd:
		m.setReg(a, value.Integer(m.getReg(b).AsInteger()&m.getReg(c).AsInteger()))
	case bytecode.OpBitOr:
		m.setReg(a, value.Integer(m.getReg(b).AsInteger()|m.getReg(c).AsInteger()))
	case bytecode.OpBitXor:
		m.setReg(a, value.Integer(m.getReg(b).AsInteger()^m.getReg(c).AsInteger()))
	case bytecode.OpShiftLeft:
		m.setReg(a, value.Integer(m.getReg(b).AsInteger()<<uint32(m.getReg(c).AsInteger())))
	case bytecode.OpShiftRight:
		// Logical (unsigned) shift, so a negative-looking pattern doesn't
		// sign-extend; spec.md leaves exact signedness unspecified.
		m.setReg(a, value.Integer(int32(uint32(m.getReg(b).AsInteger())>>uint32(m.getReg(c).AsInteger()))))

	case bytecode.OpJump:
		m.pc = pc + 1 + int(bx)
	case bytecode.OpJumpBack:
		m.pc = pc + 1 - int(bx)
	case bytecode.OpJumpIfFalse:
		if !m.getReg(a).Truthy() {
			m.pc = pc + 1 + int(bx)
		}

	case bytecode.OpCall:
		return value.Nil(), false, m.call(a, b, c, pc)
	case bytecode.OpAsyncCall:
		return value.Nil(), false, m.asyncCall(a, b, c)
	case bytecode.OpAwait:
		return m.await(a, b)

	case bytecode.OpReturn:
		return m.doReturn(a)

	case bytecode.OpBuildList:
		return value.Nil(), false, m.buildList(a, b, c)
	case bytecode.OpBuildDict:
		return value.Nil(), false, m.buildDict(a, b, c)
	case bytecode.OpIndexGet:
		return value.Nil(), false, m.indexGet(a, b, c)
	case bytecode.OpIndexSet:
		return value.Nil(), false, m.indexSet(a, b, c)
	case bytecode.OpPropGet:
		return value.Nil(), false, m.propGet(pc, a, b, c)
	case bytecode.OpPropSet:
		return value.Nil(), false, m.propSet(a, b, c)

	case bytecode.OpMakeClass:
		return value.Nil(), false, m.makeClass(a, b, c)
	case bytecode.OpMethod:
		return value.Nil(), false, m.defineMethod(a, b, c)

	case bytecode.OpPushTry:
		m.tryStack = append(m.tryStack, tryEntry{handlerPC: pc + 1 + int(bx), frameDepth: len(m.frames)})
	case bytecode.OpPopTry:
		if len(m.tryStack) > 0 {
			m.tryStack = m.tryStack[:len(m.tryStack)-1]
		}
	case bytecode.OpThrow:
		return value.Nil(), false, &RuntimeError{Message: describeThrow(m, m.getReg(a)), Value: m.getReg(a)}
	case bytecode.OpGetError:
		m.setReg(a, m.pendingError)
		m.pendingError = value.Nil()

	case bytecode.OpImport:
		return value.Nil(), false, m.doImport(a, bx)

	default:
		return value.Nil(), false, fmt.Errorf("%w: 0x%02x", ErrInvalidOpcode, uint8(op))
	}
	return value.Nil(), false, nil
}

func (m *VM) constantName(idx uint16) (string, error) {
	v := m.chunk.Constants[idx]
	s, ok := m.tryAsString(v)
	if !ok {
		return "", fmt.Errorf("vm: constant %d is not a name", idx)
	}
	return s, nil
}

func describeThrow(m *VM, v value.Value) string {
	if s, ok := m.tryAsString(v); ok {
		return s
	}
	return v.Kind()
}
