// Copyright 2024 The Aguila Authors
// This file is part of Aguila.
//
// Aguila is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package vm implements the register-based bytecode interpreter: call
// frames, globals, the try/catch unwind stack, the resource table, the
// native function registry, the module registry, and the tiered dispatch
// machinery (inline cache, specialization cache, hotspot detector, JIT
// backend) that sit on top of the plain interpreter loop.
package vm

import (
	"fmt"

	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// VM executes one Chunk against one shared object Table (the same table the
// compiler interned its string/class-name constants into — see
// compiler.Compile's doc comment).
type VM struct {
	chunk   *bytecode.Chunk
	objects *object.Table

	frames []*frame
	pc     int

	globals map[string]value.Value

	tryStack     []tryEntry
	pendingError value.Value

	resources *ResourceTable
	natives   *NativeRegistry
	modules   *ModuleRegistry

	ic    *InlineCache
	spec  *SpecializationCache
	hot   *HotspotDetector

	halted bool
}

// New returns a VM ready to run chunk. objects must be the same table the
// compiler used, since the chunk's constant pool references it by handle.
// natives is consulted both for Call's native-dispatch case and for
// seeding well-known globals (e.g. "imprimir") the compiler's PrintStmt
// lowering expects to already be defined. modules is the module registry
// Import resolves against; pass the same registry a caller already built
// (rather than a fresh one) when this VM is meant to share stdlib module
// exports with another VM — the "hilo" thread-spawn native's fresh VM does
// exactly that, since a module's exports are just named native indices with
// no VM-private state.
func New(chunk *bytecode.Chunk, objects *object.Table, natives *NativeRegistry, modules *ModuleRegistry) *VM {
	m := &VM{
		chunk:     chunk,
		objects:   objects,
		globals:   make(map[string]value.Value),
		resources: NewResourceTable(),
		natives:   natives,
		modules:   modules,
		ic:        NewInlineCache(),
		spec:      NewSpecializationCache(),
		hot:       NewHotspotDetector(),
		frames:    []*frame{{}},
	}
	for name, idx := range natives.byName {
		m.globals[name] = value.Native(idx)
	}
	return m
}

// RunFrom starts execution at entryPC with args loaded into the outermost
// frame's registers 0..len(args)-1, then runs to completion. Used by the
// "hilo" thread-spawn native to begin a freshly constructed VM directly at
// a function's body, bypassing the ordinary Call instruction (there is no
// caller frame to return to — this VM's whole life is that one call).
func (m *VM) RunFrom(entryPC uint32, args []value.Value) (value.Value, error) {
	regs := &m.frames[0].regs
	for i, v := range args {
		if i >= len(regs) {
			break
		}
		regs[i] = uint64(v)
	}
	m.pc = int(entryPC)
	return m.Run()
}

// Objects returns the VM's object table, for natives that need to allocate
// (e.g. a string method returning a new Text).
func (m *VM) Objects() *object.Table { return m.objects }

// Resources returns the VM's resource table, for natives that open/close
// native resources (sockets, threads).
func (m *VM) Resources() *ResourceTable { return m.resources }

// Modules returns the VM's module registry, for the Import opcode and for
// natives that register a module.
func (m *VM) Modules() *ModuleRegistry { return m.modules }

func (m *VM) currentFrame() *frame {
	return m.frames[len(m.frames)-1]
}

func (m *VM) getReg(idx uint8) value.Value {
	return value.Value(m.currentFrame().regs[idx])
}

func (m *VM) setReg(idx uint8, v value.Value) {
	m.currentFrame().regs[idx] = uint64(v)
}

// Run executes until the outermost frame returns (or an error/throw
// propagates past every try handler) and returns the value its Return
// instruction carried.
func (m *VM) Run() (value.Value, error) {
	for {
		v, done, err := m.step()
		if err != nil {
			return value.Nil(), err
		}
		if done {
			return v, nil
		}
	}
}

// step fetches, decodes, and executes exactly one instruction. done is true
// when the outermost frame has returned.
func (m *VM) step() (result value.Value, done bool, err error) {
	if m.halted {
		return value.Nil(), false, ErrHalted
	}
	if m.pc >= len(m.chunk.Code) {
		return value.Nil(), false, fmt.Errorf("vm: pc %d past end of code (%d instructions)", m.pc, len(m.chunk.Code))
	}

	ins := m.chunk.Code[m.pc]
	op, a, b, c, bx := bytecode.Decode(ins)
	at := m.pc
	m.pc++

	v, halted, err := m.execute(at, op, a, b, c, bx)
	if err != nil {
		if handled := m.tryHandle(err); handled {
			return value.Nil(), false, nil
		}
		m.halted = true
		return value.Nil(), false, err
	}
	if halted {
		m.halted = true
		return v, true, nil
	}
	return value.Nil(), false, nil
}

// tryHandle attempts to route err to the nearest enclosing PushTry handler.
// It returns false (uncaught) for a host error (anything not a
// *RuntimeError) — those always propagate to the caller of Run, since they
// indicate a broken program or VM, not a catchable language exception.
func (m *VM) tryHandle(err error) bool {
	rerr, ok := err.(*RuntimeError)
	if !ok {
		return false
	}
	if len(m.tryStack) == 0 {
		return false
	}
	top := m.tryStack[len(m.tryStack)-1]
	m.tryStack = m.tryStack[:len(m.tryStack)-1]
	m.frames = m.frames[:top.frameDepth]
	m.pendingError = rerr.Value
	m.pc = top.handlerPC
	return true
}

// Dump returns a short multi-line diagnostic snapshot (frame depth, object
// table stats, PC) in the teacher's go-spew-backed debug-dump style.
func (m *VM) Dump() string {
	return dumpVM(m)
}
