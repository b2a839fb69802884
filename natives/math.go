package natives

import (
	"errors"
	"math"
	"math/rand"

	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

// RegisterMath installs the "mate" module (original_source's mate.rs):
// raiz(sqrt) aleatorio(random) sen(sin) cos piso(floor) techo(ceil)
// potencia(pow), registered the same way as "net"/"hilo" — as native
// functions exported through a vm.Module resolved by `importar "mate"`.
func RegisterMath(nr *vm.NativeRegistry, mr *vm.ModuleRegistry) {
	exports := make(map[string]value.Value)

	reg := func(name string, fn vm.NativeFn) {
		idx := nr.Register("mate."+name, fn)
		exports[name] = value.Native(idx)
	}

	reg("raiz", func(m *vm.VM, args []value.Value) (value.Value, error) {
		n, err := oneNumber(args, "raiz")
		if err != nil {
			return value.Nil(), err
		}
		return value.Number(math.Sqrt(n)), nil
	})

	reg("aleatorio", func(m *vm.VM, args []value.Value) (value.Value, error) {
		return value.Number(rand.Float64()), nil
	})

	reg("sen", func(m *vm.VM, args []value.Value) (value.Value, error) {
		n, err := oneNumber(args, "sen")
		if err != nil {
			return value.Nil(), err
		}
		return value.Number(math.Sin(n)), nil
	})

	reg("cos", func(m *vm.VM, args []value.Value) (value.Value, error) {
		n, err := oneNumber(args, "cos")
		if err != nil {
			return value.Nil(), err
		}
		return value.Number(math.Cos(n)), nil
	})

	reg("piso", func(m *vm.VM, args []value.Value) (value.Value, error) {
		n, err := oneNumber(args, "piso")
		if err != nil {
			return value.Nil(), err
		}
		return value.Integer(int32(math.Floor(n))), nil
	})

	reg("techo", func(m *vm.VM, args []value.Value) (value.Value, error) {
		n, err := oneNumber(args, "techo")
		if err != nil {
			return value.Nil(), err
		}
		return value.Integer(int32(math.Ceil(n))), nil
	})

	reg("potencia", func(m *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: potencia requiere base y exponente")
		}
		return value.Number(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
	})

	mr.Register(&vm.Module{Name: "mate", Exports: exports})
}

func oneNumber(args []value.Value, name string) (float64, error) {
	if len(args) < 1 {
		return 0, errors.New("natives: " + name + " requiere un numero")
	}
	return args[0].AsNumber(), nil
}
