package vm

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// dumpConfig mirrors the teacher's habit of a single shared spew.ConfigState
// rather than the package-level default, so nested pointers print without
// addresses cluttering test failure output.
var dumpConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// dumpVM renders a short diagnostic snapshot: frame depth, current PC,
// object table stats, and the live try-handler stack. Intended for test
// failure messages and a future `aguila vm` CLI inspector, not for
// production logging.
func dumpVM(m *VM) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pc=%d frames=%d halted=%v\n", m.pc, len(m.frames), m.halted)
	fmt.Fprintf(&b, "objects: %s\n", dumpConfig.Sprint(m.objects.Stats()))
	if len(m.tryStack) > 0 {
		fmt.Fprintf(&b, "try stack: %s\n", dumpConfig.Sprint(m.tryStack))
	}
	if !m.pendingError.IsNil() {
		fmt.Fprintf(&b, "pending error: %s\n", m.pendingError.Kind())
	}
	return b.String()
}
