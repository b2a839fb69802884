package object

import "sync"

const (
	// initialCapacity mirrors the Rust arena's starting Vec capacity.
	initialCapacity = 1024

	// poolSize is the small-string pool's fixed capacity; it is never
	// resized past this, matching the contract in spec.md's object-table
	// description ("the pool is not resized past its initial capacity").
	poolSize = 256

	// poolThreshold is the byte length under which a Text allocation is
	// routed into the pool instead of the general arena.
	poolThreshold = 64

	// poolTag marks a handle as a pooled-string handle (top bit of the
	// 32-bit handle, distinct from Value's own 64-bit sign-bit object tag).
	poolTag    = uint32(0x8000_0000)
	indexMask  = uint32(0xffff)
	genShift   = 16
)

// slot holds one arena-managed object; nil means free.
type slot struct {
	obj Obj
}

// Table is the generational-index object arena described in spec.md §4.2.
//
// Handles are (generation<<16 | index) for arena slots, or
// (poolTag | pool index) for pooled small strings. Stale handles — a
// generation mismatch, or an index past the arena — read as absent rather
// than panicking; only a caller that chooses to unwrap treats that as
// fatal (see vm's "invalid object handle" error).
type Table struct {
	mu          sync.Mutex
	slots       []slot
	generations []uint32
	freeList    []uint32 // FIFO: delays reuse so stale-handle bugs surface in tests

	stringPool     [poolSize]string
	stringPoolUsed [poolSize]bool
	poolFree       []uint32 // FIFO of free pool indices
}

// New returns an empty Table ready for allocation.
func New() *Table {
	t := &Table{
		slots:       make([]slot, 0, initialCapacity),
		generations: make([]uint32, 0, initialCapacity),
		freeList:    make([]uint32, 0, initialCapacity/4),
		poolFree:    make([]uint32, poolSize),
	}
	for i := range t.poolFree {
		t.poolFree[i] = uint32(i)
	}
	return t
}

// Alloc stores obj and returns its handle. Small Text objects (under
// poolThreshold bytes) are routed into the string pool when room remains
// there; everything else lands in the general arena.
//
// Alloc/Get/GetMut/Free are mutex-guarded: a thread spawned by the "hilo"
// native shares this same Table with the VM that spawned it (the chunk's
// constant pool references handles into it), so concurrent allocation from
// two OS threads is a real possibility, not just a theoretical one.
func (t *Table) Alloc(obj Obj) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if txt, ok := obj.(*Text); ok && len(txt.Value) < poolThreshold && len(t.poolFree) > 0 {
		idx := t.poolFree[0]
		t.poolFree = t.poolFree[1:]
		t.stringPool[idx] = txt.Value
		t.stringPoolUsed[idx] = true
		return poolTag | idx
	}

	var index uint32
	if n := len(t.freeList); n > 0 {
		index = t.freeList[0]
		t.freeList = t.freeList[1:]
	} else {
		index = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
		t.generations = append(t.generations, 0)
	}

	generation := t.generations[index]
	t.slots[index] = slot{obj: obj}
	return (generation << genShift) | index
}

// Get returns the object at handle, or (nil, false) if the handle is stale
// or out of range.
func (t *Table) Get(handle uint32) (Obj, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if handle&poolTag != 0 {
		idx := handle &^ poolTag
		if idx >= poolSize || !t.stringPoolUsed[idx] {
			return nil, false
		}
		return &Text{Value: t.stringPool[idx]}, true
	}

	index := handle & indexMask
	generation := handle >> genShift
	if int(index) >= len(t.slots) {
		return nil, false
	}
	if t.generations[index] != generation {
		return nil, false
	}
	if t.slots[index].obj == nil {
		return nil, false
	}
	return t.slots[index].obj, true
}

// GetMut returns the object at handle for in-place mutation. Pooled strings
// are immutable and always report absent here, matching spec.md's
// "mutable access to a pooled string is rejected" rule.
func (t *Table) GetMut(handle uint32) (Obj, bool) {
	if handle&poolTag != 0 {
		return nil, false
	}
	return t.Get(handle) // Get already locks; GetMut adds no extra synchronization of its own.
}

// Free releases handle, bumping its slot's generation so any other copy of
// the handle reads as stale from then on. Freeing an already-free or
// out-of-range handle is a silent no-op, matching the Rust arena.
func (t *Table) Free(handle uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if handle&poolTag != 0 {
		idx := handle &^ poolTag
		if idx < poolSize && t.stringPoolUsed[idx] {
			t.stringPoolUsed[idx] = false
			t.stringPool[idx] = ""
			t.poolFree = append(t.poolFree, idx)
		}
		return
	}

	index := handle & indexMask
	generation := handle >> genShift
	if int(index) >= len(t.slots) || t.generations[index] != generation {
		return
	}

	t.slots[index] = slot{}
	t.generations[index]++ // wraps naturally on overflow, as uint32
	t.freeList = append(t.freeList, index)
}

// Count returns the number of live arena objects (excludes pooled strings).
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.slots {
		if s.obj != nil {
			n++
		}
	}
	return n
}

// Stats reports live/free/arena-size/pooled-string bookkeeping, used by
// diagnostics and tests (mirrors probe-lang's Memory.Used()/Limit() accessor pattern).
type Stats struct {
	Live       int
	Free       int
	ArenaSize  int
	PoolInUse  int
}

// Stats computes a snapshot of the table's current bookkeeping.
func (t *Table) Stats() Stats {
	live := t.Count()
	t.mu.Lock()
	defer t.mu.Unlock()
	poolInUse := 0
	for _, used := range t.stringPoolUsed {
		if used {
			poolInUse++
		}
	}
	return Stats{
		Live:      live,
		Free:      len(t.freeList),
		ArenaSize: len(t.slots),
		PoolInUse: poolInUse,
	}
}
