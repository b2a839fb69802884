package natives

import (
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

// asText returns v's underlying Go string if v is an object handle to a
// Text, otherwise false. Mirrors vm's own unexported tryAsString, which
// natives cannot reach directly since it isn't part of the VM's public API.
func asText(m *vm.VM, v value.Value) (string, bool) {
	if !v.IsObject() {
		return "", false
	}
	obj, ok := m.Objects().Get(v.AsObjectHandle())
	if !ok {
		return "", false
	}
	txt, ok := obj.(*object.Text)
	if !ok {
		return "", false
	}
	return txt.Value, true
}

func newText(m *vm.VM, s string) value.Value {
	return value.Object(m.Objects().Alloc(&object.Text{Value: s}))
}
