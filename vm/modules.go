package vm

import (
	"fmt"

	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// Module is a named bundle of globals a native package exposes to Import,
// e.g. the "net" or "hilo" (thread) modules registered in package
// natives.
type Module struct {
	Name    string
	Exports map[string]value.Value
}

// ModuleRegistry holds every module available to the Import instruction,
// keyed by the path string a program's `importar "net"` names.
type ModuleRegistry struct {
	modules map[string]*Module
}

// NewModuleRegistry returns an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string]*Module)}
}

// Register adds mod under its own Name, overwriting any previous module of
// the same name.
func (r *ModuleRegistry) Register(mod *Module) {
	r.modules[mod.Name] = mod
}

// Lookup returns the module named name, if registered.
func (r *ModuleRegistry) Lookup(name string) (*Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// doImport implements the Import instruction: resolve the path string at
// constants[bx], look it up in the module registry, and bind a Dict of its
// exports into register a so the compiler's lowering of `importar "net" as
// net` can read `net.escuchar` through an ordinary PropGet.
func (m *VM) doImport(a uint8, bx uint16) error {
	path, err := m.constantName(bx)
	if err != nil {
		return err
	}
	mod, ok := m.modules.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModule, path)
	}
	d := object.NewDict()
	for name, v := range mod.Exports {
		d.Set(name, uint64(v))
	}
	handle := m.objects.Alloc(d)
	m.setReg(a, value.Object(handle))
	return nil
}
