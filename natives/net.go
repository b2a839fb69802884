package natives

import (
	"errors"
	"fmt"
	"net"

	"github.com/aguila-lang/aguila/value"
	"github.com/aguila-lang/aguila/vm"
)

// RegisterNet installs the "net" module (original_source's net.rs):
// escuchar(listen)/conectar(connect) return a Resource wrapping a stdlib
// net.Listener/net.Conn, and aceptar(accept)/escribir(write)/leer(read) are
// resource methods callable on that handle (`socket.leer()`), mirroring the
// teacher's resource model exactly — Go's own net package is the only
// socket library anywhere in the pack, so this is stdlib by necessity, not
// by default (see DESIGN.md).
func RegisterNet(nr *vm.NativeRegistry, mr *vm.ModuleRegistry) {
	exports := make(map[string]value.Value)

	escuchar := nr.Register("net.escuchar", func(m *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Nil(), errors.New("natives: net.escuchar requiere 1 argumento (puerto)")
		}
		port := int(args[0].AsNumber())
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return value.Nil(), fmt.Errorf("error al escuchar en %s: %w", addr, err)
		}
		return value.Resource(m.Resources().Alloc(ln)), nil
	})
	exports["escuchar"] = value.Native(escuchar)

	conectar := nr.Register("net.conectar", func(m *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: net.conectar requiere 2 argumentos (host, puerto)")
		}
		host, ok := asText(m, args[0])
		if !ok {
			return value.Nil(), errors.New("natives: host debe ser texto")
		}
		port := int(args[1].AsNumber())
		addr := fmt.Sprintf("%s:%d", host, port)
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return value.Nil(), fmt.Errorf("error al conectar a %s: %w", addr, err)
		}
		return value.Resource(m.Resources().Alloc(conn)), nil
	})
	exports["conectar"] = value.Native(conectar)

	mr.Register(&vm.Module{Name: "net", Exports: exports})

	nr.RegisterResourceMethod("aceptar", func(m *vm.VM, args []value.Value) (value.Value, error) {
		res, ok := m.Resources().Get(args[0].AsResourceHandle())
		if !ok {
			return value.Nil(), errors.New("natives: recurso invalido")
		}
		ln, ok := res.(net.Listener)
		if !ok {
			return value.Nil(), errors.New("natives: el recurso no es un servidor")
		}
		conn, err := ln.Accept()
		if err != nil {
			return value.Nil(), fmt.Errorf("error en aceptar: %w", err)
		}
		return value.Resource(m.Resources().Alloc(conn)), nil
	})

	nr.RegisterResourceMethod("escribir", func(m *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Nil(), errors.New("natives: escribir requiere (self, datos)")
		}
		res, ok := m.Resources().Get(args[0].AsResourceHandle())
		if !ok {
			return value.Nil(), errors.New("natives: recurso invalido")
		}
		conn, ok := res.(net.Conn)
		if !ok {
			return value.Nil(), errors.New("natives: el recurso no es un socket")
		}
		data, ok := asText(m, args[1])
		if !ok {
			return value.Nil(), errors.New("natives: datos deben ser texto")
		}
		n, err := conn.Write([]byte(data))
		if err != nil {
			return value.Nil(), fmt.Errorf("error al escribir: %w", err)
		}
		return value.Integer(int32(n)), nil
	})

	nr.RegisterResourceMethod("leer", func(m *vm.VM, args []value.Value) (value.Value, error) {
		res, ok := m.Resources().Get(args[0].AsResourceHandle())
		if !ok {
			return value.Nil(), errors.New("natives: recurso invalido")
		}
		conn, ok := res.(net.Conn)
		if !ok {
			return value.Nil(), errors.New("natives: el recurso no es un socket")
		}
		buf := make([]byte, 1024)
		n, err := conn.Read(buf)
		if err != nil {
			return value.Nil(), fmt.Errorf("error al leer: %w", err)
		}
		return newText(m, string(buf[:n])), nil
	})
}
