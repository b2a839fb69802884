package natives

import (
	"errors"

	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

var errNotDict = errors.New("natives: receiver is not a dict")

func asDict(m *vm.VM, v value.Value) (*object.Dict, bool) {
	if !v.IsObject() {
		return nil, false
	}
	obj, ok := m.Objects().GetMut(v.AsObjectHandle())
	if !ok {
		return nil, false
	}
	d, ok := obj.(*object.Dict)
	return d, ok
}

// RegisterDicts binds `keys`/`values`/`has`, the dict primitive methods
// SPEC_FULL.md supplements beyond spec.md's minimum list (dict method
// handling in original_source has no dedicated stdlib file of its own —
// these mirror the teacher's object.Dict's own Keys/Entries bookkeeping).
func RegisterDicts(nr *vm.NativeRegistry) {
	nr.RegisterPrimitiveMethod(object.KindDict, "keys", func(m *vm.VM, args []value.Value) (value.Value, error) {
		d, ok := asDict(m, args[0])
		if !ok {
			return value.Nil(), errNotDict
		}
		elems := make([]uint64, len(d.Keys))
		for i, k := range d.Keys {
			elems[i] = uint64(newText(m, k))
		}
		return value.Object(m.Objects().Alloc(&object.List{Elems: elems})), nil
	})

	nr.RegisterPrimitiveMethod(object.KindDict, "values", func(m *vm.VM, args []value.Value) (value.Value, error) {
		d, ok := asDict(m, args[0])
		if !ok {
			return value.Nil(), errNotDict
		}
		elems := make([]uint64, len(d.Keys))
		for i, k := range d.Keys {
			elems[i] = d.Entries[k]
		}
		return value.Object(m.Objects().Alloc(&object.List{Elems: elems})), nil
	})

	nr.RegisterPrimitiveMethod(object.KindDict, "has", func(m *vm.VM, args []value.Value) (value.Value, error) {
		d, ok := asDict(m, args[0])
		if !ok {
			return value.Nil(), errNotDict
		}
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: has requiere una clave")
		}
		key, ok := asText(m, args[1])
		if !ok {
			return value.Nil(), errors.New("natives: has requiere una clave de texto")
		}
		_, exists := d.Entries[key]
		return value.Bool(exists), nil
	})
}
