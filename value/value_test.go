package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumberRoundTrip(t *testing.T) {
	v := Number(123.456)
	require.True(t, v.IsNumber())
	require.False(t, v.IsNil())
	require.False(t, v.IsInteger())
	require.Equal(t, 123.456, v.AsNumber())
}

func TestNil(t *testing.T) {
	v := Nil()
	require.True(t, v.IsNil())
	require.False(t, v.IsNumber())
	require.False(t, v.Truthy())
}

func TestBool(t *testing.T) {
	tru := Bool(true)
	require.True(t, tru.IsBool())
	require.True(t, tru.AsBool())
	require.True(t, tru.Truthy())

	fls := Bool(false)
	require.True(t, fls.IsBool())
	require.False(t, fls.AsBool())
	require.False(t, fls.Truthy())
}

func TestIntegerRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 2147483647, -2147483648, 42}
	for _, i := range cases {
		v := Integer(i)
		require.True(t, v.IsInteger(), "value %d", i)
		require.False(t, v.IsNumber())
		require.Equal(t, i, v.AsInteger())
		require.Equal(t, float64(i), v.AsNumber())
	}
}

func TestNativeAndResourceAndObject(t *testing.T) {
	n := Native(7)
	require.True(t, n.IsNative())
	require.Equal(t, uint32(7), n.AsNativeIndex())

	r := Resource(9)
	require.True(t, r.IsResource())
	require.Equal(t, uint32(9), r.AsResourceHandle())

	o := Object(0x00010002)
	require.True(t, o.IsObject())
	require.Equal(t, uint32(0x00010002), o.AsObjectHandle())
}

func TestCallable(t *testing.T) {
	v := Callable(128)
	require.True(t, v.IsCallable())
	require.False(t, v.IsInteger())
	require.Equal(t, uint32(128), v.AsEntryPC())
}

func TestEqualityIsBitwiseForPrimitivesAndHandleForObjects(t *testing.T) {
	require.True(t, Integer(5).Equal(Integer(5)))
	require.False(t, Integer(5).Equal(Integer(6)))
	require.True(t, Number(1.5).Equal(Number(1.5)))
	require.True(t, Object(1).Equal(Object(1)))
	require.False(t, Object(1).Equal(Object(2)))
}

func TestTruthiness(t *testing.T) {
	require.True(t, Number(0).Truthy())
	require.True(t, Integer(0).Truthy())
	require.False(t, Nil().Truthy())
	require.False(t, Bool(false).Truthy())
	require.True(t, Bool(true).Truthy())
}
