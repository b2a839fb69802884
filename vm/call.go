package vm

import (
	"fmt"

	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

// call implements the Call instruction: gather C arguments from registers
// B+1..B+C and dispatch on the callee in B, per spec.md's four-case
// convention (bound method, class construction, native, bytecode entry).
func (m *VM) call(a, b, c uint8, atPC int) error {
	callee := m.getReg(b)
	args := make([]value.Value, c)
	for i := uint8(0); i < c; i++ {
		args[i] = m.getReg(b + 1 + i)
	}
	caller := m.currentFrame()
	return m.dispatchCall(callee, args, func(v value.Value) {
		caller.regs[a] = uint64(v)
	})
}

// asyncCall is Call's async sibling: it runs the callee eagerly (this MVP
// never suspends) and wraps the result in a resolved Promise.
func (m *VM) asyncCall(a, b, c uint8) error {
	callee := m.getReg(b)
	args := make([]value.Value, c)
	for i := uint8(0); i < c; i++ {
		args[i] = m.getReg(b + 1 + i)
	}
	result, err := m.invokeAndWait(callee, args)
	if err != nil {
		return err
	}
	handle := m.objects.Alloc(&object.Promise{State: object.PromiseResolved, Value: uint64(result)})
	m.setReg(a, value.Object(handle))
	return nil
}

// await unwraps the Promise in register b into register a.
func (m *VM) await(a, b uint8) (value.Value, bool, error) {
	v := m.getReg(b)
	if !v.IsObject() {
		return value.Nil(), false, fmt.Errorf("vm: await on a non-promise value")
	}
	obj, ok := m.objects.Get(v.AsObjectHandle())
	if !ok {
		return value.Nil(), false, ErrInvalidObjectHandle
	}
	p, ok := obj.(*object.Promise)
	if !ok {
		return value.Nil(), false, fmt.Errorf("vm: await on a non-promise value")
	}
	if p.State == object.PromiseRejected {
		return value.Nil(), false, &RuntimeError{Message: "await: rejected promise", Value: value.Value(p.Value)}
	}
	m.setReg(a, value.Value(p.Value))
	return value.Nil(), false, nil
}

// dispatchCall resolves callee against the four call shapes and hands its
// eventual result to deliver: synchronously for a native or a class
// construction, or (for a bytecode entry) once the pushed frame's Return
// executes.
func (m *VM) dispatchCall(callee value.Value, args []value.Value, deliver func(value.Value)) error {
	switch {
	case callee.IsNative():
		result, err := m.natives.Call(m, callee.AsNativeIndex(), args)
		if err != nil {
			return &RuntimeError{Message: err.Error(), Value: m.newText(err.Error())}
		}
		deliver(result)
		return nil

	case callee.IsCallable():
		entryPC := callee.AsEntryPC()
		m.hot.RecordCall(entryPC, m.chunk.Code, func(pc int) bool {
			for _, op := range []bytecode.Op{bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul} {
				if m.spec.Pattern(pc, uint8(op)) == PatternIntInt && m.spec.Specialized(pc, uint8(op)) {
					return true
				}
			}
			return false
		})
		if fn, ok := m.hot.Lookup(entryPC); ok && len(args) == 1 {
			deliver(fn(args[0], m.chunk.Constants))
			return nil
		}
		m.pushBytecodeFrame(entryPC, args, deliver)
		return nil

	case callee.IsObject():
		obj, ok := m.objects.Get(callee.AsObjectHandle())
		if !ok {
			return ErrInvalidObjectHandle
		}
		switch o := obj.(type) {
		case *object.BoundMethod:
			newArgs := append([]value.Value{value.Value(o.Receiver)}, args...)
			return m.dispatchCall(value.Value(o.Method), newArgs, deliver)
		case *object.NativeMethod:
			newArgs := append([]value.Value{value.Value(o.Receiver)}, args...)
			return m.dispatchCall(value.Native(o.NativeIndex), newArgs, deliver)
		case *object.Class:
			return m.construct(callee.AsObjectHandle(), o, args, deliver)
		default:
			return ErrNotCallable
		}

	default:
		return ErrNotCallable
	}
}

// construct allocates a new Instance of class and, if it (or an ancestor)
// defines "init", runs it with the instance prepended to args; init's own
// return value is discarded; deliver always receives the constructed
// instance.
func (m *VM) construct(classHandle uint32, class *object.Class, args []value.Value, deliver func(value.Value)) error {
	instHandle := m.objects.Alloc(object.NewInstance(classHandle))
	instVal := value.Object(instHandle)

	if initVal, ok := class.LookupMethod("init", m.resolveClass); ok {
		initArgs := append([]value.Value{instVal}, args...)
		if err := m.invokeDiscard(value.Value(initVal), initArgs); err != nil {
			return err
		}
	}
	deliver(instVal)
	return nil
}

func (m *VM) resolveClass(handle uint32) *object.Class {
	obj, ok := m.objects.Get(handle)
	if !ok {
		return nil
	}
	cls, ok := obj.(*object.Class)
	if !ok {
		return nil
	}
	return cls
}

// pushBytecodeFrame pushes a new call frame whose registers 0..len(args)-1
// hold args, resumes execution at entryPC, and arranges for deliver to run
// when that frame's Return executes.
func (m *VM) pushBytecodeFrame(entryPC uint32, args []value.Value, deliver func(value.Value)) {
	nf := &frame{returnPC: m.pc, deliver: deliver}
	for i, v := range args {
		if i >= len(nf.regs) {
			break
		}
		nf.regs[i] = uint64(v)
	}
	m.frames = append(m.frames, nf)
	m.pc = int(entryPC)
}

// invokeDiscard runs callee to completion (pushing and draining frames as
// needed) without ever writing its result anywhere the caller's own
// registers can see — used for a class's implicit init() call.
func (m *VM) invokeDiscard(callee value.Value, args []value.Value) error {
	startDepth := len(m.frames)
	if err := m.dispatchCall(callee, args, func(value.Value) {}); err != nil {
		return err
	}
	for len(m.frames) > startDepth {
		_, _, err := m.step()
		if err != nil {
			return err
		}
	}
	return nil
}

// invokeAndWait runs callee to completion and returns its result, used by
// AsyncCall's eager MVP semantics.
func (m *VM) invokeAndWait(callee value.Value, args []value.Value) (value.Value, error) {
	startDepth := len(m.frames)
	var result value.Value
	if err := m.dispatchCall(callee, args, func(v value.Value) { result = v }); err != nil {
		return value.Nil(), err
	}
	for len(m.frames) > startDepth {
		_, _, err := m.step()
		if err != nil {
			return value.Nil(), err
		}
	}
	return result, nil
}

// doReturn pops the current frame and delivers its value, or — for the
// outermost frame — reports it as Run's final result.
func (m *VM) doReturn(a uint8) (value.Value, bool, error) {
	v := m.getReg(a)
	cur := m.currentFrame()
	m.frames = m.frames[:len(m.frames)-1]

	if cur.deliver == nil {
		return v, true, nil
	}
	m.pc = cur.returnPC
	cur.deliver(v)
	return value.Nil(), false, nil
}
