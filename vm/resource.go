package vm

// ResourceTable is the opaque, type-erased home for native resources (open
// sockets, file handles, anything a native function hands back to the
// language as a value.Resource). Unlike object.Table it is not generational
// and, deliberately, it never recycles a freed index either: spec.md's
// resource-move model requires a handle to read as invalid forever once its
// resource has moved, and reusing the index would let a stale handle from
// before the move silently alias whatever gets allocated into that slot
// next.
type ResourceTable struct {
	slots []interface{}
}

// NewResourceTable returns an empty ResourceTable.
func NewResourceTable() *ResourceTable {
	return &ResourceTable{}
}

// Alloc stores r and returns its handle. Indices are never reused, even
// after Take/Free — see the type doc comment.
func (t *ResourceTable) Alloc(r interface{}) uint32 {
	t.slots = append(t.slots, r)
	return uint32(len(t.slots) - 1)
}

// Get returns the resource at handle without invalidating it.
func (t *ResourceTable) Get(handle uint32) (interface{}, bool) {
	if int(handle) >= len(t.slots) || t.slots[handle] == nil {
		return nil, false
	}
	return t.slots[handle], true
}

// Take removes and returns the resource at handle, leaving the slot empty
// forever. This is the "move" half of the resource-move model: the caller
// is meant to Alloc the returned value into a different ResourceTable
// (typically one belonging to another OS thread), after which the original
// handle reads as invalid forever — a stale reference never resurrects,
// matching spec.md's use-after-move contract.
func (t *ResourceTable) Take(handle uint32) (interface{}, bool) {
	if int(handle) >= len(t.slots) || t.slots[handle] == nil {
		return nil, false
	}
	r := t.slots[handle]
	t.slots[handle] = nil
	return r, true
}

// Free drops the resource at handle without returning it (an explicit
// `soltar`/drop, as opposed to a move).
func (t *ResourceTable) Free(handle uint32) {
	_, _ = t.Take(handle)
}
