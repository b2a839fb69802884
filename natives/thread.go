package natives

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

// movedResource is a resource taken out of the spawning VM's table while
// its new handle in the child VM's table isn't known yet.
type movedResource struct {
	argIndex int
	res      interface{}
}

// RegisterThread installs the "hilo" module's single native, `crear`
// (original_source/aguila/src/stdlib/thread.rs's thread_crear — not
// "generar", a name an earlier draft of this module used before the
// original source was consulted directly). `crear(fn, ...args)` spawns fn
// on a new OS thread running a fresh VM that shares the immutable chunk and
// object table with the caller but owns a private register file, frame
// stack, and tiered-dispatch caches.
//
// Resource-typed arguments move: the caller's slot is taken (and reads as
// invalid from then on, see vm.ResourceTable) and reinstalled under a
// new handle in the child VM's own resource table before the child starts
// — the handoff original_source performs by reinserting into a brand-new
// VM's resource table with "new handles". An errgroup.Group runs the child
// and a ready channel provides the one-shot rendezvous: crear blocks until
// the child has safely taken ownership of every moved resource, then the
// two threads run completely
// independently (fire-and-forget, exactly like the Rust original: crear
// itself returns nil immediately and never joins the child).
func RegisterThread(chunk *bytecode.Chunk, objects *object.Table, nr *vm.NativeRegistry, mr *vm.ModuleRegistry) {
	crear := nr.Register("hilo.crear", func(m *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 1 || !args[0].IsCallable() {
			return value.Nil(), errors.New("natives: hilo.crear requiere una funcion como primer argumento")
		}
		entryPC := args[0].AsEntryPC()
		threadArgs := append([]value.Value(nil), args[1:]...)

		var moved []movedResource
		for i, a := range threadArgs {
			if !a.IsResource() {
				continue
			}
			res, ok := m.Resources().Take(a.AsResourceHandle())
			if !ok {
				return value.Nil(), fmt.Errorf("natives: recurso invalido en el argumento %d", i+1)
			}
			moved = append(moved, movedResource{argIndex: i, res: res})
		}

		var g errgroup.Group
		ready := make(chan struct{})
		g.Go(func() error {
			threadVM := vm.New(chunk, objects, nr, mr)
			finalArgs := append([]value.Value(nil), threadArgs...)
			for _, mv := range moved {
				finalArgs[mv.argIndex] = value.Resource(threadVM.Resources().Alloc(mv.res))
			}
			close(ready)
			_, err := threadVM.RunFrom(entryPC, finalArgs)
			return err
		})
		<-ready

		go func() {
			if err := g.Wait(); err != nil {
				fmt.Fprintf(os.Stderr, "hilo: %v\n", err)
			}
		}()

		return value.Nil(), nil
	})

	mr.Register(&vm.Module{Name: "hilo", Exports: map[string]value.Value{
		"crear": value.Native(crear),
	}})
}
