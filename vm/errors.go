// Copyright 2024 The Aguila Authors
// This file is part of Aguila.
//
// Aguila is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package vm

import (
	"errors"

	"github.com/aguila-lang/aguila/value"
)

// ErrHalted is returned when step is called on a VM that already returned
// from its outermost frame.
var ErrHalted = errors.New("vm: already halted")

// ErrDivisionByZero is returned by Div/Mod when the divisor is zero.
var ErrDivisionByZero = errors.New("vm: division by zero")

// ErrInvalidOpcode is returned when the fetched byte does not correspond to
// a known opcode.
var ErrInvalidOpcode = errors.New("vm: invalid opcode")

// ErrUndefinedGlobal is returned by GetGlobal for a name nothing ever
// defined.
var ErrUndefinedGlobal = errors.New("vm: undefined global")

// ErrNotCallable is returned when Call's callee register holds a Value that
// is none of: a bytecode Callable, a native index, a class, or a
// bound/native method.
var ErrNotCallable = errors.New("vm: value is not callable")

// ErrUndefinedProperty is returned by PropGet when neither the receiver's
// own fields, its class's method chain, nor the primitive method registry
// has the requested name.
var ErrUndefinedProperty = errors.New("vm: undefined property")

// ErrInvalidIndex is returned by IndexGet/IndexSet for an out-of-range list
// index or a non-string dict key.
var ErrInvalidIndex = errors.New("vm: invalid index")

// ErrInvalidObjectHandle is returned when a register holds a stale or
// out-of-range object-table handle.
var ErrInvalidObjectHandle = errors.New("vm: invalid object handle")

// ErrInvalidResourceHandle names a stale or out-of-range resource-table
// handle — the common case being use of a resource handle after it moved
// to another thread. The vm package itself never returns it; the natives
// that use resources report an invalid handle with their own error text.
var ErrInvalidResourceHandle = errors.New("vm: invalid or moved resource handle")

// ErrUncaughtThrow is not returned by Run: a Throw with no enclosing PushTry
// handler anywhere on the call stack reaches Run's caller as the
// *RuntimeError itself, whose message starts with "vm: uncaught:".
var ErrUncaughtThrow = errors.New("vm: uncaught exception")

// ErrUnknownModule is returned by Import for a path no module is
// registered under.
var ErrUnknownModule = errors.New("vm: unknown module")

// RuntimeError wraps a language-level thrown value (as opposed to a host
// error like ErrInvalidOpcode) so callers can distinguish "the program threw
// something" from "the VM itself is broken".
type RuntimeError struct {
	// Message is a short description for Go error formatting; Value is the
	// exact thrown Value (usually a Text) available to the language's own
	// catch block.
	Message string
	Value   value.Value
}

func (e *RuntimeError) Error() string {
	return "vm: uncaught: " + e.Message
}
