package natives

import (
	"errors"
	"strings"

	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

var errNotList = errors.New("natives: receiver is not a list")

func asList(m *vm.VM, v value.Value) (*object.List, bool) {
	if !v.IsObject() {
		return nil, false
	}
	obj, ok := m.Objects().GetMut(v.AsObjectHandle())
	if !ok {
		return nil, false
	}
	l, ok := obj.(*object.List)
	return l, ok
}

// RegisterLists binds the list primitive-method registry spec.md §6 names
// (`append/remove/length/join/clear/reverse`), grounded one-for-one on
// original_source/aguila/src/stdlib/lista.rs's
// `agregar/eliminar/longitud/unir/limpiar/invertir`.
func RegisterLists(nr *vm.NativeRegistry) {
	nr.RegisterPrimitiveMethod(object.KindList, "append", func(m *vm.VM, args []value.Value) (value.Value, error) {
		l, ok := asList(m, args[0])
		if !ok {
			return value.Nil(), errNotList
		}
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: append requiere el elemento a agregar")
		}
		l.Elems = append(l.Elems, uint64(args[1]))
		return value.Nil(), nil
	})

	nr.RegisterPrimitiveMethod(object.KindList, "remove", func(m *vm.VM, args []value.Value) (value.Value, error) {
		l, ok := asList(m, args[0])
		if !ok {
			return value.Nil(), errNotList
		}
		if len(args) < 2 || !args[1].IsInteger() {
			return value.Nil(), errors.New("natives: remove requiere un indice entero")
		}
		idx := int(args[1].AsInteger())
		if idx < 0 || idx >= len(l.Elems) {
			return value.Nil(), errors.New("natives: indice fuera de rango")
		}
		removed := value.Value(l.Elems[idx])
		l.Elems = append(l.Elems[:idx], l.Elems[idx+1:]...)
		return removed, nil
	})

	nr.RegisterPrimitiveMethod(object.KindList, "length", func(m *vm.VM, args []value.Value) (value.Value, error) {
		l, ok := asList(m, args[0])
		if !ok {
			return value.Nil(), errNotList
		}
		return value.Integer(int32(len(l.Elems))), nil
	})

	nr.RegisterPrimitiveMethod(object.KindList, "join", func(m *vm.VM, args []value.Value) (value.Value, error) {
		l, ok := asList(m, args[0])
		if !ok {
			return value.Nil(), errNotList
		}
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: join requiere el separador")
		}
		sep, ok := asText(m, args[1])
		if !ok {
			return value.Nil(), errors.New("natives: join requiere un separador de texto")
		}
		parts := make([]string, len(l.Elems))
		for i, bits := range l.Elems {
			parts[i] = Display(m, value.Value(bits))
		}
		return newText(m, strings.Join(parts, sep)), nil
	})

	nr.RegisterPrimitiveMethod(object.KindList, "clear", func(m *vm.VM, args []value.Value) (value.Value, error) {
		l, ok := asList(m, args[0])
		if !ok {
			return value.Nil(), errNotList
		}
		l.Elems = nil
		return value.Nil(), nil
	})

	nr.RegisterPrimitiveMethod(object.KindList, "reverse", func(m *vm.VM, args []value.Value) (value.Value, error) {
		l, ok := asList(m, args[0])
		if !ok {
			return value.Nil(), errNotList
		}
		for i, j := 0, len(l.Elems)-1; i < j; i, j = i+1, j-1 {
			l.Elems[i], l.Elems[j] = l.Elems[j], l.Elems[i]
		}
		return value.Nil(), nil
	})
}
