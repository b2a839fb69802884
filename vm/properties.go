package vm

import (
	"fmt"

	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// propGet implements PropGet A, B, C: A = B.<constants[C]>. It consults the
// inline cache keyed on (pc, name) before falling back to a full
// resolution: primitive receivers (Text/List/Dict) resolve against the
// native registry's primitive-method table; Instance receivers walk the
// owning class's method chain, producing a BoundMethod.
func (m *VM) propGet(pc int, a, b, c uint8) error {
	recv := m.getReg(b)
	name, err := m.constantName16(c)
	if err != nil {
		return err
	}
	if recv.IsResource() {
		idx, ok := m.natives.resourceMethod(name)
		if !ok {
			return fmt.Errorf("%w: %q on a resource", ErrUndefinedProperty, name)
		}
		entry := shapeEntry{isNative: true, nativeIdx: idx}
		return m.deliverPropGet(a, recv, entry)
	}
	if !recv.IsObject() {
		return fmt.Errorf("%w: %q on a non-object value", ErrUndefinedProperty, name)
	}
	handle := recv.AsObjectHandle()
	obj, ok := m.objects.Get(handle)
	if !ok {
		return ErrInvalidObjectHandle
	}

	classHandle := uint32(0)
	if inst, isInst := obj.(*object.Instance); isInst {
		classHandle = inst.Class
	}

	if entry, hit := m.ic.Lookup(pc, name, classHandle); hit {
		return m.deliverPropGet(a, recv, entry)
	}

	switch o := obj.(type) {
	case *object.Instance:
		cls := m.resolveClass(o.Class)
		if cls == nil {
			return ErrInvalidObjectHandle
		}
		if fv, ok := o.Fields[name]; ok {
			m.setReg(a, value.Value(fv))
			return nil
		}
		methodVal, ok := cls.LookupMethod(name, m.resolveClass)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUndefinedProperty, name)
		}
		entry := shapeEntry{classHandle: o.Class, entryPC: value.Value(methodVal).AsEntryPC()}
		m.ic.Record(pc, name, entry)
		return m.deliverPropGet(a, recv, entry)

	case *object.Text:
		idx, ok := m.natives.primitiveMethod(object.KindText, name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUndefinedProperty, name)
		}
		entry := shapeEntry{isNative: true, nativeIdx: idx}
		m.ic.Record(pc, name, entry)
		return m.deliverPropGet(a, recv, entry)

	case *object.List:
		idx, ok := m.natives.primitiveMethod(object.KindList, name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUndefinedProperty, name)
		}
		entry := shapeEntry{isNative: true, nativeIdx: idx}
		m.ic.Record(pc, name, entry)
		return m.deliverPropGet(a, recv, entry)

	case *object.Dict:
		idx, ok := m.natives.primitiveMethod(object.KindDict, name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUndefinedProperty, name)
		}
		entry := shapeEntry{isNative: true, nativeIdx: idx}
		m.ic.Record(pc, name, entry)
		return m.deliverPropGet(a, recv, entry)

	case *object.Class:
		methodVal, ok := o.LookupMethod(name, m.resolveClass)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUndefinedProperty, name)
		}
		m.setReg(a, value.Value(methodVal))
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUndefinedProperty, name)
	}
}

// deliverPropGet materializes a resolved cache entry into register a: a
// native method becomes a NativeMethod handle, a bytecode method becomes a
// BoundMethod handle, both bundled with the receiver so the following Call
// instruction can unpack them per dispatchCall's convention.
func (m *VM) deliverPropGet(a uint8, recv value.Value, entry shapeEntry) error {
	if entry.isNative {
		handle := m.objects.Alloc(&object.NativeMethod{Receiver: uint64(recv), NativeIndex: entry.nativeIdx})
		m.setReg(a, value.Object(handle))
		return nil
	}
	handle := m.objects.Alloc(&object.BoundMethod{
		Receiver: uint64(recv),
		Method:   uint64(value.Callable(entry.entryPC)),
	})
	m.setReg(a, value.Object(handle))
	return nil
}

// propSet implements PropSet A, B, C: A.<constants[B]> = C. Only Instance
// receivers support field assignment; fields are created on first write.
func (m *VM) propSet(a, b, c uint8) error {
	recv := m.getReg(a)
	name, err := m.constantName16(b)
	if err != nil {
		return err
	}
	if !recv.IsObject() {
		return fmt.Errorf("%w: %q on a non-object value", ErrUndefinedProperty, name)
	}
	obj, ok := m.objects.GetMut(recv.AsObjectHandle())
	if !ok {
		return ErrInvalidObjectHandle
	}
	inst, ok := obj.(*object.Instance)
	if !ok {
		return fmt.Errorf("vm: cannot set property %q on a %s", name, obj.Kind())
	}
	inst.Fields[name] = uint64(m.getReg(c))
	return nil
}
