package bytecode

import (
	"testing"

	"github.com/aguila-lang/aguila/value"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeABC(t *testing.T) {
	ins := EncodeABC(OpAdd, 3, 4, 5)
	op, a, b, c, _ := Decode(ins)
	require.Equal(t, OpAdd, op)
	require.Equal(t, uint8(3), a)
	require.Equal(t, uint8(4), b)
	require.Equal(t, uint8(5), c)
}

func TestEncodeDecodeABx(t *testing.T) {
	ins := EncodeABx(OpLoadConst, 2, 0xbeef)
	op, a, _, _, bx := Decode(ins)
	require.Equal(t, OpLoadConst, op)
	require.Equal(t, uint8(2), a)
	require.Equal(t, uint16(0xbeef), bx)
}

func TestChunkWritePatchAndFreeze(t *testing.T) {
	c := New()
	idx := c.Write(EncodeABx(OpJump, 0, 0))
	c.Write(EncodeABC(OpAdd, 1, 2, 3))
	c.Patch(idx, EncodeABx(OpJump, 0, uint16(c.Len())))

	require.Equal(t, 2, c.Len())

	ci := c.AddConstant(value.Number(42))
	require.Equal(t, uint16(0), ci)

	c.Freeze()
	require.True(t, c.Frozen())
	require.Panics(t, func() { c.Write(EncodeABC(OpAdd, 0, 0, 0)) })
	require.Panics(t, func() { c.AddConstant(value.Nil()) })
}
