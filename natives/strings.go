package natives

import (
	"errors"
	"strings"

	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

var errNotText = errors.New("natives: receiver is not text")

// RegisterStrings binds the string primitive-method registry spec.md §6
// names (`uppercase/lowercase/length/contains/replace/trim/split`),
// grounded one-for-one on original_source/aguila/src/stdlib/texto.rs's
// `mayusculas/minusculas/longitud/contiene/reemplazar/recortar/dividir`.
func RegisterStrings(nr *vm.NativeRegistry) {
	nr.RegisterPrimitiveMethod(object.KindText, "uppercase", func(m *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errNotText
		}
		return newText(m, strings.ToUpper(s)), nil
	})

	nr.RegisterPrimitiveMethod(object.KindText, "lowercase", func(m *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errNotText
		}
		return newText(m, strings.ToLower(s)), nil
	})

	nr.RegisterPrimitiveMethod(object.KindText, "length", func(m *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errNotText
		}
		return value.Integer(int32(len([]rune(s)))), nil
	})

	nr.RegisterPrimitiveMethod(object.KindText, "contains", func(m *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errNotText
		}
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: contains requiere un argumento")
		}
		sub, ok := asText(m, args[1])
		if !ok {
			return value.Nil(), errors.New("natives: contains requiere texto")
		}
		return value.Bool(strings.Contains(s, sub)), nil
	})

	nr.RegisterPrimitiveMethod(object.KindText, "replace", func(m *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errNotText
		}
		if len(args) < 3 {
			return value.Nil(), errors.New("natives: replace requiere 'viejo' y 'nuevo'")
		}
		old, ok := asText(m, args[1])
		if !ok {
			return value.Nil(), errors.New("natives: replace requiere texto")
		}
		replacement, ok := asText(m, args[2])
		if !ok {
			return value.Nil(), errors.New("natives: replace requiere texto")
		}
		return newText(m, strings.ReplaceAll(s, old, replacement)), nil
	})

	nr.RegisterPrimitiveMethod(object.KindText, "trim", func(m *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errNotText
		}
		return newText(m, strings.TrimSpace(s)), nil
	})

	nr.RegisterPrimitiveMethod(object.KindText, "split", func(m *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errNotText
		}
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: split requiere un separador")
		}
		sep, ok := asText(m, args[1])
		if !ok {
			return value.Nil(), errors.New("natives: split requiere texto")
		}
		parts := strings.Split(s, sep)
		elems := make([]uint64, len(parts))
		for i, p := range parts {
			elems[i] = uint64(newText(m, p))
		}
		handle := m.Objects().Alloc(&object.List{Elems: elems})
		return value.Object(handle), nil
	})
}
