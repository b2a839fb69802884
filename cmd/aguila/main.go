// Copyright 2024 The Aguila Authors
// This file is part of Aguila.
//
// Aguila is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command aguila is the execution-core harness: run/check/compile/vm over a
// serialized ast.Program. Aguila's own module boundary stops at the AST (see
// ast's package doc comment) — the lexer and parser that turn `.aguila`
// source text into that tree live in a front end outside this module, so
// this harness consumes the front end's output directly: a JSON document
// decoded by ast.DecodeJSON.
//
// Usage:
//
//	aguila run <program.json>
//	aguila check <program.json>
//	aguila compile <program.json>
//	aguila vm <program.json>
//
// Exit codes: 0 success, 1 any error.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aguila-lang/aguila/ast"
	"github.com/aguila-lang/aguila/compiler"
	"github.com/aguila-lang/aguila/natives"
	"github.com/aguila-lang/aguila/vm"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: aguila <run|check|compile|vm> <program.json>")
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	filename := flag.Arg(1)

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	prog, err := ast.DecodeJSON(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "check":
		runCheck(prog)
	case "compile":
		runCompile(prog)
	case "run", "vm":
		runExec(prog)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		flag.Usage()
		os.Exit(1)
	}
}

// runCheck only compiles: a clean compile is this module's notion of
// "syntactic and semantic check", since parsing lives outside the module
// boundary and the compiler is the first stage that can reject a tree (a
// duplicate top-level declaration, a duplicate method, a break outside a
// loop). Names are not resolved here: an undefined global only fails at run
// time.
func runCheck(prog *ast.Program) {
	c := compiler.New()
	if _, _, err := c.Compile(prog); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

// runCompile compiles and prints the chunk's disassembly, the `compile`
// subcommand's way of "producing a chunk" without also running it.
func runCompile(prog *ast.Program) {
	c := compiler.New()
	chunk, _, err := c.Compile(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(chunk.Disassemble())
}

// runExec compiles and then runs the chunk to completion. `run` and `vm`
// currently share this path: the tiered dispatch loop always starts in the
// bytecode interpreter and only promotes a hot entry point to the JIT
// backend once hotspot.go's call-count threshold trips, so "forcing the
// bytecode path" is the default behavior rather than a distinct mode.
func runExec(prog *ast.Program) {
	c := compiler.New()
	chunk, objects, err := c.Compile(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	nr := vm.NewNativeRegistry()
	mr := vm.NewModuleRegistry()
	natives.RegisterAll(chunk, objects, nr, mr)

	m := vm.New(chunk, objects, nr, mr)
	if _, err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
