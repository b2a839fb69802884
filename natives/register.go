package natives

import (
	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/vm"
)

// RegisterAll wires every native function and stdlib module this package
// provides into nr/mr: "imprimir", the string/list/dict primitive-method
// registries, "hash_sha3", and the "mate"/"net"/"hilo" modules. chunk and
// objects are only needed by "hilo" (a spawned thread's fresh VM shares
// both with the VM that spawned it).
func RegisterAll(chunk *bytecode.Chunk, objects *object.Table, nr *vm.NativeRegistry, mr *vm.ModuleRegistry) {
	RegisterPrint(nr)
	RegisterStrings(nr)
	RegisterLists(nr)
	RegisterDicts(nr)
	RegisterCrypto(nr)
	RegisterMath(nr, mr)
	RegisterNet(nr, mr)
	RegisterThread(chunk, objects, nr, mr)
}
