package bytecode

import (
	"errors"
	"fmt"

	"github.com/aguila-lang/aguila/value"
)

// ErrFrozen is returned when mutating a Chunk after Freeze has been called.
var ErrFrozen = errors.New("bytecode: chunk is frozen")

// Instruction is one packed 32-bit instruction word.
type Instruction uint32

// EncodeABC packs a three-register instruction.
func EncodeABC(op Op, a, b, c uint8) Instruction {
	return Instruction(uint32(op) | uint32(a)<<8 | uint32(b)<<16 | uint32(c)<<24)
}

// EncodeABx packs a register + 16-bit-immediate instruction. bx is used as
// a constant-pool index (LoadConst, DefineGlobal, GetGlobal, Import) or a
// relative jump offset in instructions (Jump, JumpBack, JumpIfFalse,
// PushTry).
func EncodeABx(op Op, a uint8, bx uint16) Instruction {
	return Instruction(uint32(op) | uint32(a)<<8 | uint32(bx)<<16)
}

// Decode unpacks an instruction into its opcode and every possible field;
// callers read whichever fields their opcode's layout defines.
func Decode(ins Instruction) (op Op, a, b, c uint8, bx uint16) {
	w := uint32(ins)
	op = Op(w & 0xff)
	a = uint8((w >> 8) & 0xff)
	b = uint8((w >> 16) & 0xff)
	c = uint8((w >> 24) & 0xff)
	bx = uint16(w >> 16)
	return
}

// Chunk is the executable unit the compiler produces and the VM runs: a
// flat instruction stream plus an indexed constant pool. Chunks are
// position-independent except for relative jumps, and are immutable once
// Freeze is called — shared read-only across threads spawned by the "hilo"
// module's crear native (natives.RegisterThread).
type Chunk struct {
	Code      []Instruction
	Constants []value.Value
	frozen    bool
}

// New returns an empty, writable Chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends an instruction and returns its index (used by the compiler
// as a jump-patch target).
func (c *Chunk) Write(ins Instruction) int {
	if c.frozen {
		panic(ErrFrozen)
	}
	c.Code = append(c.Code, ins)
	return len(c.Code) - 1
}

// Patch overwrites the instruction at index (used to fix up a forward jump
// once its landing PC is known).
func (c *Chunk) Patch(index int, ins Instruction) {
	if c.frozen {
		panic(ErrFrozen)
	}
	c.Code[index] = ins
}

// AddConstant appends v to the constant pool and returns its index. Panics
// if the pool would exceed the 16-bit Bx operand range, or if the chunk is
// already frozen.
func (c *Chunk) AddConstant(v value.Value) uint16 {
	if c.frozen {
		panic(ErrFrozen)
	}
	if len(c.Constants) >= 1<<16 {
		panic(fmt.Errorf("bytecode: constant pool exceeded %d entries", 1<<16))
	}
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// Freeze marks the chunk immutable. Subsequent Write/Patch/AddConstant
// calls panic. The compiler calls this exactly once, after the whole
// program has been emitted.
func (c *Chunk) Freeze() {
	c.frozen = true
}

// Frozen reports whether Freeze has been called.
func (c *Chunk) Frozen() bool {
	return c.frozen
}

// Len returns the number of instructions in the chunk.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// Disassemble returns a human-readable listing, grouping operands by the
// opcode's layout.
func (c *Chunk) Disassemble() string {
	out := ""
	for i, ins := range c.Code {
		op, a, b, cc, bx := Decode(ins)
		if op.IsABx() {
			out += fmt.Sprintf("[%04d] %-14s R%d, %d\n", i, op, a, bx)
		} else {
			out += fmt.Sprintf("[%04d] %-14s R%d, R%d, R%d\n", i, op, a, b, cc)
		}
	}
	return out
}
