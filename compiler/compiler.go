// Copyright 2024 The Aguila Authors
// This file is part of Aguila.
//
// Aguila is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package compiler implements the single-pass AST-to-bytecode compiler:
// bump register allocation per function frame, forward/backward jump
// patching, inline function-body emission, class/method emission, and
// try/catch frame emission.
package compiler

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/aguila-lang/aguila/ast"
	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// ErrRegisterOverflow is returned when a function frame would need a 257th
// register (registers 0..255 are available).
var ErrRegisterOverflow = errors.New("compiler: register overflow (more than 256 live locals/temporaries in one function)")

// ErrDuplicateMethod is returned when a class declares the same method name
// twice.
var ErrDuplicateMethod = errors.New("compiler: duplicate method in class")

// ErrBreakOutsideLoop is returned for a break/continue with no enclosing
// while loop.
var ErrBreakOutsideLoop = errors.New("compiler: break/continue outside a loop")

// ErrInvalidAssignTarget is returned when an AssignExpr's target is not an
// identifier, index expression, or property expression.
var ErrInvalidAssignTarget = errors.New("compiler: invalid assignment target")

// ErrPropertyConstantRange is returned when a property or class/method name
// constant would need an index beyond the single byte PropGet/PropSet/
// MakeClass/Method reserve for it in the ABC instruction word.
var ErrPropertyConstantRange = errors.New("compiler: too many distinct property/class/method names (limit 256 per chunk)")

// ErrDuplicateGlobal is returned when a top-level `let`/`func`/`class`
// declares a name that a previous top-level declaration already bound.
var ErrDuplicateGlobal = errors.New("compiler: duplicate top-level declaration")

// loopCtx tracks the information needed to lower break/continue inside one
// enclosing while loop.
type loopCtx struct {
	header        int // instruction index of the condition re-check
	breakPatches  []int
}

// scope is one function frame (or the top-level/module frame). Register
// allocation is bump-only: nextReg only ever increases within a scope,
// matching spec.md's "Overflow past 255 is a compile error" rule.
type scope struct {
	isTopLevel bool
	locals     map[string]uint8
	nextReg    int
	loops      []*loopCtx
}

func newScope(isTopLevel bool) *scope {
	return &scope{isTopLevel: isTopLevel, locals: make(map[string]uint8)}
}

func cloneLocals(m map[string]uint8) map[string]uint8 {
	out := make(map[string]uint8, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Compiler holds the state of one compilation pass. It is not reusable
// across multiple programs; construct a fresh one per Compile call.
type Compiler struct {
	chunk        *bytecode.Chunk
	objects      *object.Table
	scopes       []*scope
	stringConsts map[string]uint16

	// declaredGlobals is the membership set backing bindName's
	// duplicate-top-level-declaration guard, the same "set for cheap
	// membership checking" idiom the teacher uses for block-ancestry
	// checks in its miner package.
	declaredGlobals mapset.Set
}

// New returns a Compiler ready to compile a single Program.
func New() *Compiler {
	return &Compiler{
		chunk:           bytecode.New(),
		objects:         object.New(),
		stringConsts:    make(map[string]uint16),
		declaredGlobals: mapset.NewSet(),
	}
}

// Compile lowers prog into a frozen Chunk and the object table its string,
// class, and method-name constants were interned into. The caller hands
// both to vm.New so compile-time and run-time object handles refer to the
// same table (sidestepping the "pending object" migration spec.md's
// invariants describe as an allowed transitional detail).
func (c *Compiler) Compile(prog *ast.Program) (*bytecode.Chunk, *object.Table, error) {
	c.scopes = []*scope{newScope(true)}
	for _, stmt := range prog.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return nil, nil, err
		}
	}
	c.emitDefaultReturn()
	c.chunk.Freeze()
	return c.chunk, c.objects, nil
}

func (c *Compiler) current() *scope {
	return c.scopes[len(c.scopes)-1]
}

func (c *Compiler) currentLoop() *loopCtx {
	s := c.current()
	if len(s.loops) == 0 {
		return nil
	}
	return s.loops[len(s.loops)-1]
}

// allocTemp bumps the current scope's register counter and returns the
// newly reserved register.
func (c *Compiler) allocTemp() (uint8, error) {
	s := c.current()
	if s.nextReg > 255 {
		return 0, ErrRegisterOverflow
	}
	reg := uint8(s.nextReg)
	s.nextReg++
	return reg, nil
}

// reserveBlock bumps the current scope's register counter by n and returns
// the first register of the newly reserved contiguous block. Used for
// Call's callee+argument layout, which the VM requires to be adjacent.
func (c *Compiler) reserveBlock(n int) (uint8, error) {
	s := c.current()
	if s.nextReg+n > 256 {
		return 0, ErrRegisterOverflow
	}
	base := uint8(s.nextReg)
	s.nextReg += n
	return base, nil
}

// bindName binds name to the value currently held in reg: a global, if the
// current scope is the top level, or a local register otherwise. A
// top-level name already claimed by an earlier `let`/`func`/`class` is
// ErrDuplicateGlobal — shadowing only exists for locals, per spec.md's
// "globals are a flat namespace" rule.
func (c *Compiler) bindName(name string, reg uint8) error {
	s := c.current()
	if s.isTopLevel {
		if c.declaredGlobals.Contains(name) {
			return fmt.Errorf("%w: %q", ErrDuplicateGlobal, name)
		}
		c.declaredGlobals.Add(name)
		idx := c.constantForString(name)
		c.emitABx(bytecode.OpDefineGlobal, reg, idx)
		return nil
	}
	s.locals[name] = reg
	return nil
}

// constantForString interns s as a pooled Text object (deduplicated within
// this compilation) and returns its constant-pool index.
func (c *Compiler) constantForString(s string) uint16 {
	if idx, ok := c.stringConsts[s]; ok {
		return idx
	}
	handle := c.objects.Alloc(&object.Text{Value: s})
	idx := c.chunk.AddConstant(value.Object(handle))
	c.stringConsts[s] = idx
	return idx
}

// constantForStringByte is constantForString restricted to the single-byte
// range PropGet/PropSet/MakeClass/Method use for their name operand.
func (c *Compiler) constantForStringByte(s string) (uint8, error) {
	idx := c.constantForString(s)
	if idx > 255 {
		return 0, ErrPropertyConstantRange
	}
	return uint8(idx), nil
}

// ---- emission helpers ---------------------------------------------------

func (c *Compiler) emitABC(op bytecode.Op, a, b, cc uint8) int {
	return c.chunk.Write(bytecode.EncodeABC(op, a, b, cc))
}

func (c *Compiler) emitABx(op bytecode.Op, a uint8, bx uint16) int {
	return c.chunk.Write(bytecode.EncodeABx(op, a, bx))
}

// emitJump writes a placeholder ABx jump (Bx=0) and returns its index for a
// later patchJumpHere call.
func (c *Compiler) emitJump(op bytecode.Op, a uint8) int {
	return c.chunk.Write(bytecode.EncodeABx(op, a, 0))
}

// patchJumpHere patches the jump at idx so it lands on the next instruction
// to be written (the current end of the code stream).
func (c *Compiler) patchJumpHere(idx int) {
	ins := c.chunk.Code[idx]
	op, a, _, _, _ := bytecode.Decode(ins)
	target := len(c.chunk.Code)
	bx := uint16(target - (idx + 1))
	c.chunk.Patch(idx, bytecode.EncodeABx(op, a, bx))
}

// emitJumpBackTo emits a JumpBack landing on header.
func (c *Compiler) emitJumpBackTo(header int) {
	idx := c.chunk.Write(bytecode.EncodeABx(bytecode.OpJumpBack, 0, 0))
	bx := uint16((idx + 1) - header)
	c.chunk.Patch(idx, bytecode.EncodeABx(bytecode.OpJumpBack, 0, bx))
}

// emitDefaultReturn emits `Return <nil>`, guaranteeing every function body
// (and the top-level program) terminates even without an explicit return.
func (c *Compiler) emitDefaultReturn() {
	reg, err := c.allocTemp()
	if err != nil {
		// A function whose body alone exhausts 256 registers already
		// failed at an earlier statement; this is unreachable in practice.
		panic(fmt.Errorf("compiler: %w while emitting implicit return", err))
	}
	idx := c.chunk.AddConstant(value.Nil())
	c.emitABx(bytecode.OpLoadConst, reg, idx)
	c.emitABC(bytecode.OpReturn, reg, 0, 0)
}
