// Copyright 2024 The Aguila Authors
// This file is part of Aguila.
//
// Aguila is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package natives registers the native functions the compiler assumes are
// already seeded as globals (`imprimir`), the primitive-method registry
// spec.md's PropGet handling resolves against (string/list/dict builtins),
// and the stdlib modules original_source/aguila's distillation dropped but
// a complete implementation still carries (mate, net, hilo, crypto).
package natives

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

// Display renders v the way `imprimir` and string-concatenation of a
// non-text value do: numbers/integers in their shortest round-tripping
// form, booleans and nil by keyword, object handles by dereferencing
// through m's object table.
func Display(m *vm.VM, v value.Value) string {
	switch {
	case v.IsNil():
		return "nulo"
	case v.IsBool():
		if v.AsBool() {
			return "verdadero"
		}
		return "falso"
	case v.IsInteger():
		return strconv.FormatInt(int64(v.AsInteger()), 10)
	case v.IsNumber():
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case v.IsNative():
		return "<nativa>"
	case v.IsResource():
		return fmt.Sprintf("<recurso #%d>", v.AsResourceHandle())
	case v.IsCallable():
		return fmt.Sprintf("<funcion @%d>", v.AsEntryPC())
	case v.IsObject():
		return displayObject(m, v.AsObjectHandle())
	default:
		return "<?>"
	}
}

func displayObject(m *vm.VM, handle uint32) string {
	obj, ok := m.Objects().Get(handle)
	if !ok {
		return "<objeto invalido>"
	}
	switch o := obj.(type) {
	case *object.Text:
		return o.Value
	case *object.List:
		parts := make([]string, len(o.Elems))
		for i, bits := range o.Elems {
			parts[i] = Display(m, value.Value(bits))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *object.Dict:
		parts := make([]string, 0, len(o.Keys))
		for _, k := range o.Keys {
			parts = append(parts, k+": "+Display(m, value.Value(o.Entries[k])))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *object.Instance:
		return fmt.Sprintf("<instancia de clase #%d>", o.Class)
	case *object.Class:
		return fmt.Sprintf("<clase %s>", o.Name)
	case *object.BoundMethod:
		return "<metodo enlazado>"
	case *object.NativeMethod:
		return "<metodo nativo>"
	case *object.Promise:
		return "<promesa>"
	default:
		return "<objeto>"
	}
}
