package vm

import (
	"fmt"

	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// buildList implements BuildList A, B, C: A = a new List holding the C
// contiguous register values starting at B.
func (m *VM) buildList(a, b, c uint8) error {
	elems := make([]uint64, c)
	for i := uint8(0); i < c; i++ {
		elems[i] = uint64(m.getReg(b + i))
	}
	handle := m.objects.Alloc(&object.List{Elems: elems})
	m.setReg(a, value.Object(handle))
	return nil
}

// buildDict implements BuildDict A, B, C: A = a new Dict holding the C
// key/value pairs interleaved starting at B. Keys must be Text values.
func (m *VM) buildDict(a, b, c uint8) error {
	d := object.NewDict()
	for i := uint8(0); i < c; i++ {
		keyReg := b + 2*i
		valReg := b + 2*i + 1
		key, ok := m.tryAsString(m.getReg(keyReg))
		if !ok {
			return fmt.Errorf("%w: dict key must be a string", ErrInvalidIndex)
		}
		d.Set(key, uint64(m.getReg(valReg)))
	}
	handle := m.objects.Alloc(d)
	m.setReg(a, value.Object(handle))
	return nil
}

// indexGet implements IndexGet A, B, C: A = B[C], where B is a List (C an
// integer index) or a Dict (C a string key).
func (m *VM) indexGet(a, b, c uint8) error {
	recv := m.getReg(b)
	idx := m.getReg(c)
	if !recv.IsObject() {
		return fmt.Errorf("%w: indexing a non-object value", ErrInvalidIndex)
	}
	obj, ok := m.objects.Get(recv.AsObjectHandle())
	if !ok {
		return ErrInvalidObjectHandle
	}
	switch o := obj.(type) {
	case *object.List:
		i, ok := listIndex(idx, len(o.Elems))
		if !ok {
			return fmt.Errorf("%w: list index %v out of range", ErrInvalidIndex, idx.AsNumber())
		}
		m.setReg(a, value.Value(o.Elems[i]))
		return nil
	case *object.Dict:
		key, ok := m.tryAsString(idx)
		if !ok {
			return fmt.Errorf("%w: dict key must be a string", ErrInvalidIndex)
		}
		v, ok := o.Entries[key]
		if !ok {
			m.setReg(a, value.Nil())
			return nil
		}
		m.setReg(a, value.Value(v))
		return nil
	default:
		return fmt.Errorf("%w: value is not indexable", ErrInvalidIndex)
	}
}

// indexSet implements IndexSet A, B, C: A[B] = C.
func (m *VM) indexSet(a, b, c uint8) error {
	recv := m.getReg(a)
	idx := m.getReg(b)
	val := m.getReg(c)
	if !recv.IsObject() {
		return fmt.Errorf("%w: indexing a non-object value", ErrInvalidIndex)
	}
	obj, ok := m.objects.GetMut(recv.AsObjectHandle())
	if !ok {
		return ErrInvalidObjectHandle
	}
	switch o := obj.(type) {
	case *object.List:
		i, ok := listIndex(idx, len(o.Elems))
		if !ok {
			if idx.IsInteger() && int(idx.AsInteger()) == len(o.Elems) {
				o.Elems = append(o.Elems, uint64(val))
				return nil
			}
			return fmt.Errorf("%w: list index %v out of range", ErrInvalidIndex, idx.AsNumber())
		}
		o.Elems[i] = uint64(val)
		return nil
	case *object.Dict:
		key, ok := m.tryAsString(idx)
		if !ok {
			return fmt.Errorf("%w: dict key must be a string", ErrInvalidIndex)
		}
		o.Set(key, uint64(val))
		return nil
	default:
		return fmt.Errorf("%w: value is not indexable", ErrInvalidIndex)
	}
}

func listIndex(idx value.Value, length int) (int, bool) {
	if !idx.IsInteger() && !idx.IsNumber() {
		return 0, false
	}
	i := int(idx.AsNumber())
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// makeClass implements MakeClass A, B, C: A = a new class named
// constants[B] with its parent taken from register C (Nil for no parent).
func (m *VM) makeClass(a, b, c uint8) error {
	name, err := m.constantName16(b)
	if err != nil {
		return err
	}
	cls := object.NewClass(name)
	parent := m.getReg(c)
	if !parent.IsNil() {
		if !parent.IsObject() {
			return fmt.Errorf("vm: class parent must be a class value")
		}
		cls.Parent = parent.AsObjectHandle()
		cls.HasParent = true
	}
	handle := m.objects.Alloc(cls)
	m.setReg(a, value.Object(handle))
	return nil
}

// defineMethod implements Method A, B, C: the class in register A gains a
// method named constants[B] whose entry point is the Callable in register
// C.
func (m *VM) defineMethod(a, b, c uint8) error {
	classVal := m.getReg(a)
	if !classVal.IsObject() {
		return fmt.Errorf("vm: Method target is not a class")
	}
	obj, ok := m.objects.GetMut(classVal.AsObjectHandle())
	if !ok {
		return ErrInvalidObjectHandle
	}
	cls, ok := obj.(*object.Class)
	if !ok {
		return fmt.Errorf("vm: Method target is not a class")
	}
	name, err := m.constantName16(b)
	if err != nil {
		return err
	}
	cls.Methods[name] = uint64(m.getReg(c))
	return nil
}

// constantName16 resolves a single-byte constant-pool index (the range
// PropGet/PropSet/MakeClass/Method's B/C operand is restricted to) to its
// interned string.
func (m *VM) constantName16(idx uint8) (string, error) {
	return m.constantName(uint16(idx))
}
