package vm

import (
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// tryAsString returns v's underlying Go string if v is an object handle to
// a Text, otherwise false.
func (m *VM) tryAsString(v value.Value) (string, bool) {
	if !v.IsObject() {
		return "", false
	}
	obj, ok := m.objects.Get(v.AsObjectHandle())
	if !ok {
		return "", false
	}
	txt, ok := obj.(*object.Text)
	if !ok {
		return "", false
	}
	return txt.Value, true
}

// newText interns s as a Text object and returns the Value wrapping its
// handle.
func (m *VM) newText(s string) value.Value {
	return value.Object(m.objects.Alloc(&object.Text{Value: s}))
}
