// Copyright 2024 The Aguila Authors
// This file is part of Aguila.
//
// Aguila is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package object implements the heap: a generational-index arena for the
// language's reference types, plus a small-string interning pool.
//
// The table is the sole owner of every object it holds. A Value elsewhere
// in the system is only ever a weak (generation, slot) handle into this
// table — there is no reference counting. Lifetime is process-scoped;
// release happens only when the language exposes explicit delete semantics
// or the process exits. Cycles are never collected (see DESIGN.md).
package object

import "fmt"

// Kind discriminates the variants a heap Obj may hold.
type Kind uint8

const (
	KindText Kind = iota
	KindList
	KindDict
	KindClass
	KindInstance
	KindBoundMethod
	KindPromise
	KindNativeMethod
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound_method"
	case KindPromise:
		return "promise"
	case KindNativeMethod:
		return "native_method"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Obj is implemented by every heap variant. A type switch on the concrete
// type (not Kind alone) is how callers access variant-specific fields;
// Kind exists for fast dispatch in hot paths like equality and the
// inline cache's type-id derivation.
type Obj interface {
	Kind() Kind
}

// Text is an immutable string object. Strings under the pool threshold are
// usually allocated through the small-string pool instead (see Table.Alloc),
// but any string can be boxed as a plain Text.
type Text struct {
	Value string
}

func (*Text) Kind() Kind { return KindText }

// List is a mutable, growable sequence of Values, each stored as its raw
// 64-bit Value bits (callers convert with value.Value(bits)).
type List struct {
	Elems []uint64
}

func (*List) Kind() Kind { return KindList }

// Dict is a mutable string-keyed map of Values (stored as raw 64-bit
// Value bits, same rationale as List).
type Dict struct {
	Entries map[string]uint64
	// Keys preserves insertion order for `keys`/`values` iteration, matching
	// how the language's dict literal behaves when printed or iterated.
	Keys []string
}

func (*Dict) Kind() Kind { return KindDict }

// NewDict returns an empty, ready-to-use Dict.
func NewDict() *Dict {
	return &Dict{Entries: make(map[string]uint64)}
}

// Set inserts or overwrites key, tracking insertion order for new keys.
func (d *Dict) Set(key string, v uint64) {
	if _, exists := d.Entries[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Entries[key] = v
}

// Delete removes key, if present, and drops it from the order slice.
func (d *Dict) Delete(key string) {
	if _, exists := d.Entries[key]; !exists {
		return
	}
	delete(d.Entries, key)
	for i, k := range d.Keys {
		if k == key {
			d.Keys = append(d.Keys[:i], d.Keys[i+1:]...)
			break
		}
	}
}

// Class holds a method table (name -> Value, typically a bytecode entry PC
// packed with value.Callable) and an optional parent class handle. Methods resolve
// at call time by walking the parent chain, never at definition time.
type Class struct {
	Name    string
	Methods map[string]uint64
	// Parent is the object-table handle of the parent class, or 0 with
	// HasParent=false for a root class.
	Parent    uint32
	HasParent bool
}

func (*Class) Kind() Kind { return KindClass }

// NewClass returns an empty class named name.
func NewClass(name string) *Class {
	return &Class{Name: name, Methods: make(map[string]uint64)}
}

// LookupMethod walks this class's parent chain (via resolveParent, since
// Class itself cannot dereference other handles) and returns the method
// entry Value and whether it was found.
func (c *Class) LookupMethod(name string, resolveParent func(handle uint32) *Class) (uint64, bool) {
	cur := c
	for {
		if v, ok := cur.Methods[name]; ok {
			return v, true
		}
		if !cur.HasParent {
			return 0, false
		}
		cur = resolveParent(cur.Parent)
		if cur == nil {
			return 0, false
		}
	}
}

// Instance is an object of a Class: an owning reference to its class handle
// plus a field map created lazily by assignment (fields are never declared
// ahead of time).
type Instance struct {
	Class  uint32
	Fields map[string]uint64
}

func (*Instance) Kind() Kind { return KindInstance }

// NewInstance returns an Instance of the class at handle classHandle.
func NewInstance(classHandle uint32) *Instance {
	return &Instance{Class: classHandle, Fields: make(map[string]uint64)}
}

// BoundMethod pairs a receiver Value with a method Value. It is produced on
// the fly by a property lookup that resolves to a class method, and is
// meant to be consumed immediately by the following Call instruction.
type BoundMethod struct {
	Receiver uint64
	Method   uint64
}

func (*BoundMethod) Kind() Kind { return KindBoundMethod }

// PromiseState is the three-way state of a Promise.
type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseResolved
	PromiseRejected
)

// Promise models an eagerly-resolved async result. The MVP never leaves a
// Promise Pending past the instruction that creates it; the state exists so
// a future scheduler can slot in without changing Await's contract.
type Promise struct {
	State PromiseState
	Value uint64 // the resolved value, or the rejection reason
}

func (*Promise) Kind() Kind { return KindPromise }

// NativeMethod boxes a native-function index so that primitive-receiver
// method lookups (string/list/dict builtins) can be returned as ordinary
// object-table handles, exactly like a BoundMethod to a bytecode method.
type NativeMethod struct {
	Receiver    uint64
	NativeIndex uint32
}

func (*NativeMethod) Kind() Kind { return KindNativeMethod }
