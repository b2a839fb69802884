package vm

import (
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// NativeFn is the signature every native function satisfies: it receives
// the VM (for object/resource table access) and the argument Values, and
// returns a single Value or an error (turned into a catchable RuntimeError
// by the Call instruction's native-dispatch case).
type NativeFn func(m *VM, args []value.Value) (value.Value, error)

// NativeRegistry holds every native function reachable from bytecode, by
// name (for GetGlobal lookups of e.g. "imprimir") and by index (for the
// Native-tagged Value the Call instruction dispatches on).
type NativeRegistry struct {
	fns    []NativeFn
	byName map[string]uint32

	// primitiveMethods maps a primitive receiver kind (object.KindText,
	// KindList, KindDict) and a method name to a native index, letting
	// PropGet resolve `"hola".uppercase` the same way it resolves a class
	// method — see vm/properties.go.
	primitiveMethods map[object.Kind]map[string]uint32

	// resourceMethods maps a method name straight to a native index for
	// value.Resource receivers (sockets, in particular) — mirroring
	// original_source's registrar_metodo_recurso, which has no per-resource
	// "kind" to key on since every resource shares one opaque handle type.
	resourceMethods map[string]uint32
}

// NewNativeRegistry returns an empty registry.
func NewNativeRegistry() *NativeRegistry {
	return &NativeRegistry{
		byName:           make(map[string]uint32),
		primitiveMethods: make(map[object.Kind]map[string]uint32),
		resourceMethods:  make(map[string]uint32),
	}
}

// Register adds fn under name and returns its native index (the payload of
// value.Native()).
func (r *NativeRegistry) Register(name string, fn NativeFn) uint32 {
	idx := uint32(len(r.fns))
	r.fns = append(r.fns, fn)
	r.byName[name] = idx
	return idx
}

// RegisterPrimitiveMethod binds name as a method callable on any value of
// the given primitive kind (e.g. object.KindText for string methods).
func (r *NativeRegistry) RegisterPrimitiveMethod(kind object.Kind, name string, fn NativeFn) {
	idx := r.Register(kindMethodQualifiedName(kind, name), fn)
	m, ok := r.primitiveMethods[kind]
	if !ok {
		m = make(map[string]uint32)
		r.primitiveMethods[kind] = m
	}
	m[name] = idx
}

func kindMethodQualifiedName(kind object.Kind, name string) string {
	return kind.String() + "." + name
}

// Lookup returns fn's native index by name, for seeding globals.
func (r *NativeRegistry) Lookup(name string) (uint32, bool) {
	idx, ok := r.byName[name]
	return idx, ok
}

// Call invokes the native at idx.
func (r *NativeRegistry) Call(m *VM, idx uint32, args []value.Value) (value.Value, error) {
	return r.fns[idx](m, args)
}

// primitiveMethod returns the native index bound to (kind, name), if any.
func (r *NativeRegistry) primitiveMethod(kind object.Kind, name string) (uint32, bool) {
	m, ok := r.primitiveMethods[kind]
	if !ok {
		return 0, false
	}
	idx, ok := m[name]
	return idx, ok
}

// RegisterResourceMethod binds name as a method callable on any
// value.Resource receiver (e.g. a socket's "leer"/"escribir"/"aceptar").
func (r *NativeRegistry) RegisterResourceMethod(name string, fn NativeFn) uint32 {
	idx := r.Register("recurso."+name, fn)
	r.resourceMethods[name] = idx
	return idx
}

// resourceMethod returns the native index bound to a resource method name,
// if any.
func (r *NativeRegistry) resourceMethod(name string) (uint32, bool) {
	idx, ok := r.resourceMethods[name]
	return idx, ok
}
