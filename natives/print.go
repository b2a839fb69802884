package natives

import (
	"fmt"

	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

// RegisterPrint installs the "imprimir" global compiler/stmt.go's
// compilePrint compiles every print statement down to a call of.
func RegisterPrint(nr *vm.NativeRegistry) {
	nr.Register("imprimir", func(m *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			fmt.Println()
			return value.Nil(), nil
		}
		fmt.Println(Display(m, args[0]))
		return value.Nil(), nil
	})
}
