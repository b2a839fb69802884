package vm

import (
	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/value"
)

// jitBackend is this module's stand-in for the Cranelift-based native-code
// generator spec.md describes. Go cannot easily emit and execute raw
// machine code without cgo or an assembler package nothing in the example
// corpus provides (see DESIGN.md), so this backend keeps the documented
// contract — entry-PC discovery via control-flow reconstruction, a
// specialization-gated integer fast path, one compiled closure cached per
// entry PC — but lowers to a small Go closure instead of machine code.
//
// The closures it produces are deliberately narrow: only straight-line
// integer arithmetic reachable from the entry PC, with no Call, PropGet,
// IndexGet, Throw, or Await anywhere in the reachable set. A function
// outside that shape is left entirely to the bytecode interpreter; the
// hotspot detector still tracks its call count, it just never gets a
// compiledFn.
type jitBackend struct{}

func newJITBackend() *jitBackend {
	return &jitBackend{}
}

// compile attempts to produce a compiledFn for the function whose body
// starts at entryPC. specialized reports whether the specialization cache
// has confidently learned an IntInt pattern at a given PC; compile refuses
// to lower any arithmetic instruction it hasn't seen confidently specialized,
// matching spec.md's rule that the JIT backend only ever acts on sites the
// specialization cache has already vouched for.
func (b *jitBackend) compile(entryPC uint32, chunkCode []bytecode.Instruction, specialized func(pc int) bool) (compiledFn, bool) {
	block, ok := discoverStraightLineBlock(chunkCode, int(entryPC))
	if !ok {
		return nil, false
	}
	for _, pc := range block.arithmeticPCs {
		if !specialized(pc) {
			return nil, false
		}
	}

	fn := func(firstArg value.Value, constants []value.Value) value.Value {
		var regs [256]value.Value
		regs[0] = firstArg
		for _, ins := range block.instructions {
			op, a, b, c, bx := bytecode.Decode(ins)
			switch op {
			case bytecode.OpLoadConst:
				regs[a] = constants[bx]
			case bytecode.OpMove:
				regs[a] = regs[b]
			case bytecode.OpAdd:
				regs[a] = value.Integer(regs[b].AsInteger() + regs[c].AsInteger())
			case bytecode.OpSub:
				regs[a] = value.Integer(regs[b].AsInteger() - regs[c].AsInteger())
			case bytecode.OpMul:
				regs[a] = value.Integer(regs[b].AsInteger() * regs[c].AsInteger())
			case bytecode.OpNegative:
				regs[a] = value.Integer(-regs[b].AsInteger())
			case bytecode.OpReturn:
				return regs[a]
			}
		}
		return value.Nil()
	}
	return fn, true
}

// straightLineBlock is the instruction subsequence discovered reachable
// from an entry PC that compile() is willing to lower.
type straightLineBlock struct {
	instructions  []bytecode.Instruction
	arithmeticPCs []int
}

// discoverStraightLineBlock walks forward from pc, refusing anything but a
// fixed allow-list of opcodes and any control flow except falling straight
// through to Return. This is the "CFG reconstruction" spec.md's JIT section
// calls for, deliberately restricted to the one shape (no branches) this
// backend knows how to lower.
func discoverStraightLineBlock(code []bytecode.Instruction, pc int) (straightLineBlock, bool) {
	var block straightLineBlock
	for i := pc; i < len(code); i++ {
		ins := code[i]
		op, _, _, _, _ := bytecode.Decode(ins)
		switch op {
		case bytecode.OpLoadConst, bytecode.OpMove:
			block.instructions = append(block.instructions, ins)
		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpNegative:
			block.instructions = append(block.instructions, ins)
			block.arithmeticPCs = append(block.arithmeticPCs, i)
		case bytecode.OpReturn:
			block.instructions = append(block.instructions, ins)
			return block, true
		default:
			// Anything else (calls, branches, property/index access,
			// exceptions, async) takes this function out of scope for the
			// native path; the interpreter keeps running it.
			return straightLineBlock{}, false
		}
	}
	return straightLineBlock{}, false
}
