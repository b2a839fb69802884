// Copyright 2024 The Aguila Authors
// This file is part of Aguila.
//
// Aguila is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package bytecode implements the Chunk container and the packed 32-bit
// instruction set the compiler emits and the VM executes.
package bytecode

import "fmt"

// Op is one opcode in the instruction set. Instructions are register-based
// 32-bit words in one of two layouts:
//
//	ABC: op:8 | A:8 | B:8 | C:8   (three register operands)
//	ABx: op:8 | A:8 | Bx:16       (one register, one 16-bit immediate)
type Op uint8

const (
	// Data movement
	OpLoadConst Op = iota
	OpMove
	OpDefineGlobal
	OpGetGlobal

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow

	// Comparison
	OpLess
	OpLessEq
	OpEqual

	// Logical/bitwise/unary
	OpNot
	OpNegative
	OpBitNot
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight

	// Control flow
	OpJump
	OpJumpBack
	OpJumpIfFalse

	// Call/return
	OpCall
	OpReturn

	// Data structures
	OpBuildList
	OpBuildDict
	OpIndexGet
	OpIndexSet
	OpPropGet
	OpPropSet

	// Classes
	OpMakeClass
	OpMethod

	// Exceptions
	OpPushTry
	OpPopTry
	OpThrow
	OpGetError

	// Modules/async
	OpImport
	OpAsyncCall
	OpAwait

	opCount
)

// info describes an opcode's mnemonic and operand layout, used by String,
// IsABx and Chunk.Disassemble.
type info struct {
	name string
	abx  bool // true => ABx (A + 16-bit immediate), false => ABC
}

var opInfo = [opCount]info{
	OpLoadConst:    {"LoadConst", true},
	OpMove:         {"Move", false},
	OpDefineGlobal: {"DefineGlobal", true},
	OpGetGlobal:    {"GetGlobal", true},

	OpAdd: {"Add", false},
	OpSub: {"Sub", false},
	OpMul: {"Mul", false},
	OpDiv: {"Div", false},
	OpMod: {"Mod", false},
	OpPow: {"Pow", false},

	OpLess:   {"Less", false},
	OpLessEq: {"LessEq", false},
	OpEqual:  {"Equal", false},

	OpNot:        {"Not", false},
	OpNegative:   {"Negative", false},
	OpBitNot:     {"BitNot", false},
	OpBitAnd:     {"BitAnd", false},
	OpBitOr:      {"BitOr", false},
	OpBitXor:     {"BitXor", false},
	OpShiftLeft:  {"ShiftLeft", false},
	OpShiftRight: {"ShiftRight", false},

	OpJump:        {"Jump", true},
	OpJumpBack:    {"JumpBack", true},
	OpJumpIfFalse: {"JumpIfFalse", true},

	OpCall:   {"Call", false},
	OpReturn: {"Return", false},

	OpBuildList: {"BuildList", false},
	OpBuildDict: {"BuildDict", false},
	OpIndexGet:  {"IndexGet", false},
	OpIndexSet:  {"IndexSet", false},
	OpPropGet:   {"PropGet", false},
	OpPropSet:   {"PropSet", false},

	OpMakeClass: {"MakeClass", false},
	OpMethod:    {"Method", false},

	OpPushTry:  {"PushTry", true},
	OpPopTry:   {"PopTry", false},
	OpThrow:    {"Throw", false},
	OpGetError: {"GetError", false},

	OpImport:    {"Import", true},
	OpAsyncCall: {"AsyncCall", false},
	OpAwait:     {"Await", false},
}

// String returns the opcode's mnemonic, or a hex fallback for an
// out-of-range value (decoding garbage bytes).
func (o Op) String() string {
	if int(o) < len(opInfo) && opInfo[o].name != "" {
		return opInfo[o].name
	}
	return fmt.Sprintf("op(0x%02x)", uint8(o))
}

// IsABx reports whether o uses the ABx (register + 16-bit immediate)
// layout rather than ABC (three registers).
func (o Op) IsABx() bool {
	return int(o) < len(opInfo) && opInfo[o].abx
}

// Valid reports whether o is a recognized opcode.
func (o Op) Valid() bool {
	return o < opCount
}
