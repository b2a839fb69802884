package compiler

import (
	"github.com/aguila-lang/aguila/ast"
	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/value"
)

// compileExpr compiles e and returns the register holding its result. For an
// Identifier already bound to a local register, this is that register
// itself (no copy); every other expression kind allocates a fresh temp.
func (c *Compiler) compileExpr(e ast.Expr) (uint8, error) {
	switch v := e.(type) {
	case *ast.NumberLit:
		return c.loadConst(value.Number(v.Value))
	case *ast.IntegerLit:
		return c.loadConst(value.Integer(v.Value))
	case *ast.StringLit:
		idx := c.constantForString(v.Value)
		reg, err := c.allocTemp()
		if err != nil {
			return 0, err
		}
		c.emitABx(bytecode.OpLoadConst, reg, idx)
		return reg, nil
	case *ast.BoolLit:
		return c.loadConst(value.Bool(v.Value))
	case *ast.NilLit:
		return c.loadConst(value.Nil())
	case *ast.Identifier:
		return c.compileIdentifier(v)
	case *ast.BinaryExpr:
		return c.compileBinary(v)
	case *ast.LogicalExpr:
		return c.compileLogical(v)
	case *ast.UnaryExpr:
		return c.compileUnary(v)
	case *ast.CallExpr:
		return c.compileCall(v)
	case *ast.AsyncCallExpr:
		return c.compileAsyncCall(v)
	case *ast.AwaitExpr:
		return c.compileAwait(v)
	case *ast.ListLit:
		return c.compileListLit(v)
	case *ast.DictLit:
		return c.compileDictLit(v)
	case *ast.IndexExpr:
		return c.compileIndexGet(v)
	case *ast.PropExpr:
		return c.compilePropGet(v)
	case *ast.AssignExpr:
		return c.compileAssign(v)
	case *ast.FuncLit:
		return c.compileFuncLit(v)
	default:
		panic("compiler: unhandled expression node")
	}
}

// compileExprInto compiles e and ensures its result lands exactly in dst,
// emitting a Move only when the natural result register differs.
func (c *Compiler) compileExprInto(dst uint8, e ast.Expr) error {
	reg, err := c.compileExpr(e)
	if err != nil {
		return err
	}
	if reg != dst {
		c.emitABC(bytecode.OpMove, dst, reg, 0)
	}
	return nil
}

func (c *Compiler) loadConst(v value.Value) (uint8, error) {
	reg, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	idx := c.chunk.AddConstant(v)
	c.emitABx(bytecode.OpLoadConst, reg, idx)
	return reg, nil
}

func (c *Compiler) compileIdentifier(id *ast.Identifier) (uint8, error) {
	s := c.current()
	if !s.isTopLevel {
		if reg, ok := s.locals[id.Name]; ok {
			return reg, nil
		}
	}
	reg, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	idx := c.constantForString(id.Name)
	c.emitABx(bytecode.OpGetGlobal, reg, idx)
	return reg, nil
}

func (c *Compiler) compileBinary(e *ast.BinaryExpr) (uint8, error) {
	leftReg, err := c.compileExpr(e.Left)
	if err != nil {
		return 0, err
	}
	rightReg, err := c.compileExpr(e.Right)
	if err != nil {
		return 0, err
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case ast.OpAdd:
		c.emitABC(bytecode.OpAdd, dst, leftReg, rightReg)
	case ast.OpSub:
		c.emitABC(bytecode.OpSub, dst, leftReg, rightReg)
	case ast.OpMul:
		c.emitABC(bytecode.OpMul, dst, leftReg, rightReg)
	case ast.OpDiv:
		c.emitABC(bytecode.OpDiv, dst, leftReg, rightReg)
	case ast.OpMod:
		c.emitABC(bytecode.OpMod, dst, leftReg, rightReg)
	case ast.OpPow:
		c.emitABC(bytecode.OpPow, dst, leftReg, rightReg)
	case ast.OpLess:
		c.emitABC(bytecode.OpLess, dst, leftReg, rightReg)
	case ast.OpLessEq:
		c.emitABC(bytecode.OpLessEq, dst, leftReg, rightReg)
	case ast.OpGreater:
		// a > b  ==  b < a
		c.emitABC(bytecode.OpLess, dst, rightReg, leftReg)
	case ast.OpGreaterEq:
		// a >= b  ==  b <= a
		c.emitABC(bytecode.OpLessEq, dst, rightReg, leftReg)
	case ast.OpEqual:
		c.emitABC(bytecode.OpEqual, dst, leftReg, rightReg)
	case ast.OpNotEqual:
		c.emitABC(bytecode.OpEqual, dst, leftReg, rightReg)
		c.emitABC(bytecode.OpNot, dst, dst, 0)
	case ast.OpBitAnd:
		c.emitABC(bytecode.OpBitAnd, dst, leftReg, rightReg)
	case ast.OpBitOr:
		c.emitABC(bytecode.OpBitOr, dst, leftReg, rightReg)
	case ast.OpBitXor:
		c.emitABC(bytecode.OpBitXor, dst, leftReg, rightReg)
	case ast.OpShiftLeft:
		c.emitABC(bytecode.OpShiftLeft, dst, leftReg, rightReg)
	case ast.OpShiftRight:
		c.emitABC(bytecode.OpShiftRight, dst, leftReg, rightReg)
	}
	return dst, nil
}

// compileLogical lowers `and`/`or` with conditional jumps instead of a VM
// opcode, short-circuiting the right operand exactly as spec.md's design
// notes describe.
func (c *Compiler) compileLogical(e *ast.LogicalExpr) (uint8, error) {
	reg, err := c.compileExpr(e.Left)
	if err != nil {
		return 0, err
	}
	// Hold the left value in a dedicated register so the jump target can
	// leave it untouched as the short-circuited result.
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpMove, dst, reg, 0)

	switch e.Op {
	case ast.LogicalAnd:
		skip := c.emitJump(bytecode.OpJumpIfFalse, dst)
		if err := c.compileExprInto(dst, e.Right); err != nil {
			return 0, err
		}
		c.patchJumpHere(skip)
	case ast.LogicalOr:
		toRight := c.emitJump(bytecode.OpJumpIfFalse, dst)
		toEnd := c.emitJump(bytecode.OpJump, 0)
		c.patchJumpHere(toRight)
		if err := c.compileExprInto(dst, e.Right); err != nil {
			return 0, err
		}
		c.patchJumpHere(toEnd)
	}
	return dst, nil
}

func (c *Compiler) compileUnary(e *ast.UnaryExpr) (uint8, error) {
	operand, err := c.compileExpr(e.Operand)
	if err != nil {
		return 0, err
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case ast.UnaryNot:
		c.emitABC(bytecode.OpNot, dst, operand, 0)
	case ast.UnaryNegative:
		c.emitABC(bytecode.OpNegative, dst, operand, 0)
	case ast.UnaryBitNot:
		c.emitABC(bytecode.OpBitNot, dst, operand, 0)
	}
	return dst, nil
}

// compileCall reserves a contiguous callee+argument register block (the
// VM's Call convention requires args to sit at B+1..B+C, adjacent to the
// callee in B) and fills it left to right.
func (c *Compiler) compileCall(e *ast.CallExpr) (uint8, error) {
	base, err := c.reserveBlock(1 + len(e.Args))
	if err != nil {
		return 0, err
	}
	if err := c.compileExprInto(base, e.Callee); err != nil {
		return 0, err
	}
	for i, arg := range e.Args {
		if err := c.compileExprInto(base+1+uint8(i), arg); err != nil {
			return 0, err
		}
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpCall, dst, base, uint8(len(e.Args)))
	return dst, nil
}

func (c *Compiler) compileAsyncCall(e *ast.AsyncCallExpr) (uint8, error) {
	base, err := c.reserveBlock(1 + len(e.Args))
	if err != nil {
		return 0, err
	}
	if err := c.compileExprInto(base, e.Callee); err != nil {
		return 0, err
	}
	for i, arg := range e.Args {
		if err := c.compileExprInto(base+1+uint8(i), arg); err != nil {
			return 0, err
		}
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpAsyncCall, dst, base, uint8(len(e.Args)))
	return dst, nil
}

func (c *Compiler) compileAwait(e *ast.AwaitExpr) (uint8, error) {
	promiseReg, err := c.compileExpr(e.Operand)
	if err != nil {
		return 0, err
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpAwait, dst, promiseReg, 0)
	return dst, nil
}

func (c *Compiler) compileListLit(e *ast.ListLit) (uint8, error) {
	base, err := c.reserveBlock(len(e.Elements))
	if err != nil {
		return 0, err
	}
	for i, elem := range e.Elements {
		if err := c.compileExprInto(base+uint8(i), elem); err != nil {
			return 0, err
		}
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpBuildList, dst, base, uint8(len(e.Elements)))
	return dst, nil
}

func (c *Compiler) compileDictLit(e *ast.DictLit) (uint8, error) {
	base, err := c.reserveBlock(2 * len(e.Entries))
	if err != nil {
		return 0, err
	}
	for i, entry := range e.Entries {
		if err := c.compileExprInto(base+uint8(2*i), entry.Key); err != nil {
			return 0, err
		}
		if err := c.compileExprInto(base+uint8(2*i+1), entry.Value); err != nil {
			return 0, err
		}
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpBuildDict, dst, base, uint8(len(e.Entries)))
	return dst, nil
}

func (c *Compiler) compileIndexGet(e *ast.IndexExpr) (uint8, error) {
	recvReg, err := c.compileExpr(e.Receiver)
	if err != nil {
		return 0, err
	}
	idxReg, err := c.compileExpr(e.Index)
	if err != nil {
		return 0, err
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpIndexGet, dst, recvReg, idxReg)
	return dst, nil
}

func (c *Compiler) compilePropGet(e *ast.PropExpr) (uint8, error) {
	recvReg, err := c.compileExpr(e.Receiver)
	if err != nil {
		return 0, err
	}
	nameIdx, err := c.constantForStringByte(e.Name)
	if err != nil {
		return 0, err
	}
	dst, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	c.emitABC(bytecode.OpPropGet, dst, recvReg, nameIdx)
	return dst, nil
}

func (c *Compiler) compileAssign(e *ast.AssignExpr) (uint8, error) {
	valReg, err := c.compileExpr(e.Value)
	if err != nil {
		return 0, err
	}
	switch target := e.Target.(type) {
	case *ast.Identifier:
		s := c.current()
		if !s.isTopLevel {
			if reg, ok := s.locals[target.Name]; ok {
				c.emitABC(bytecode.OpMove, reg, valReg, 0)
				return reg, nil
			}
		}
		idx := c.constantForString(target.Name)
		c.emitABx(bytecode.OpDefineGlobal, valReg, idx)
		return valReg, nil
	case *ast.IndexExpr:
		recvReg, err := c.compileExpr(target.Receiver)
		if err != nil {
			return 0, err
		}
		idxReg, err := c.compileExpr(target.Index)
		if err != nil {
			return 0, err
		}
		c.emitABC(bytecode.OpIndexSet, recvReg, idxReg, valReg)
		return valReg, nil
	case *ast.PropExpr:
		recvReg, err := c.compileExpr(target.Receiver)
		if err != nil {
			return 0, err
		}
		nameIdx, err := c.constantForStringByte(target.Name)
		if err != nil {
			return 0, err
		}
		c.emitABC(bytecode.OpPropSet, recvReg, nameIdx, valReg)
		return valReg, nil
	default:
		return 0, ErrInvalidAssignTarget
	}
}

func (c *Compiler) compileFuncLit(fn *ast.FuncLit) (uint8, error) {
	entryPC, err := c.compileFunction(fn, false)
	if err != nil {
		return 0, err
	}
	reg, err := c.allocTemp()
	if err != nil {
		return 0, err
	}
	idx := c.chunk.AddConstant(value.Callable(entryPC))
	c.emitABx(bytecode.OpLoadConst, reg, idx)
	return reg, nil
}
