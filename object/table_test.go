package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocAndGet(t *testing.T) {
	tbl := New()
	handle := tbl.Alloc(&Text{Value: "test"})

	obj, ok := tbl.Get(handle)
	require.True(t, ok)
	require.Equal(t, "test", obj.(*Text).Value)
}

func TestFreeAndReuseInvalidatesStaleHandle(t *testing.T) {
	tbl := New()
	// Force the arena path (not the string pool) by allocating a List.
	h1 := tbl.Alloc(&List{})
	tbl.Free(h1)

	h2 := tbl.Alloc(&List{})

	_, ok1 := tbl.Get(h1)
	require.False(t, ok1, "stale handle must read as absent after reuse")

	_, ok2 := tbl.Get(h2)
	require.True(t, ok2)
}

func TestStringPoolRouting(t *testing.T) {
	tbl := New()
	handle := tbl.Alloc(&Text{Value: "small"})

	require.NotZero(t, handle&poolTag, "short strings must be routed into the pool")

	obj, ok := tbl.Get(handle)
	require.True(t, ok)
	require.Equal(t, "small", obj.(*Text).Value)
}

func TestPooledStringsAreImmutable(t *testing.T) {
	tbl := New()
	handle := tbl.Alloc(&Text{Value: "small"})

	_, ok := tbl.GetMut(handle)
	require.False(t, ok)
}

func TestLongStringBypassesPool(t *testing.T) {
	tbl := New()
	long := make([]byte, poolThreshold+1)
	for i := range long {
		long[i] = 'x'
	}
	handle := tbl.Alloc(&Text{Value: string(long)})

	require.Zero(t, handle&poolTag)
	obj, ok := tbl.GetMut(handle)
	require.True(t, ok)
	require.Len(t, obj.(*Text).Value, poolThreshold+1)
}

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set("b", 1)
	d.Set("a", 2)
	d.Set("c", 3)
	require.Equal(t, []string{"b", "a", "c"}, d.Keys)

	d.Delete("a")
	require.Equal(t, []string{"b", "c"}, d.Keys)
	_, ok := d.Entries["a"]
	require.False(t, ok)
}

func TestClassMethodLookupWalksParentChain(t *testing.T) {
	tbl := New()
	parent := NewClass("Animal")
	parent.Methods["greet"] = 100
	parentHandle := tbl.Alloc(parent)

	child := NewClass("Dog")
	child.Parent = parentHandle
	child.HasParent = true
	child.Methods["bark"] = 200

	resolve := func(h uint32) *Class {
		obj, ok := tbl.Get(h)
		if !ok {
			return nil
		}
		return obj.(*Class)
	}

	v, ok := child.LookupMethod("bark", resolve)
	require.True(t, ok)
	require.EqualValues(t, 200, v)

	v, ok = child.LookupMethod("greet", resolve)
	require.True(t, ok)
	require.EqualValues(t, 100, v)

	_, ok = child.LookupMethod("missing", resolve)
	require.False(t, ok)
}

func TestStats(t *testing.T) {
	tbl := New()
	h1 := tbl.Alloc(&List{})
	tbl.Alloc(&Dict{})
	tbl.Free(h1)

	st := tbl.Stats()
	require.Equal(t, 1, st.Live)
	require.Equal(t, 1, st.Free)
}
