package compiler

import (
	"testing"

	"github.com/aguila-lang/aguila/ast"
	"github.com/aguila-lang/aguila/bytecode"
	"github.com/stretchr/testify/require"
)

func countOp(chunk *bytecode.Chunk, op bytecode.Op) int {
	n := 0
	for _, ins := range chunk.Code {
		o, _, _, _, _ := bytecode.Decode(ins)
		if o == op {
			n++
		}
	}
	return n
}

func TestCompilePrintArithmetic(t *testing.T) {
	// imprimir 40 + 2
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.PrintStmt{X: &ast.BinaryExpr{
			Op:    ast.OpAdd,
			Left:  &ast.IntegerLit{Value: 40},
			Right: &ast.IntegerLit{Value: 2},
		}},
	}}
	chunk, objs, err := New().Compile(prog)
	require.NoError(t, err)
	require.NotNil(t, objs)
	require.True(t, chunk.Frozen())
	require.Equal(t, 1, countOp(chunk, bytecode.OpAdd))
	require.Equal(t, 1, countOp(chunk, bytecode.OpCall))
	require.Equal(t, 1, countOp(chunk, bytecode.OpGetGlobal))
}

func TestCompileLetAndGlobalBinding(t *testing.T) {
	// let x = 5
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.LetStmt{Name: "x", Value: &ast.IntegerLit{Value: 5}},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 1, countOp(chunk, bytecode.OpDefineGlobal))
}

func TestCompileFuncDeclAndCall(t *testing.T) {
	// func add(a, b) { return a + b }
	// let sum = add(1, 2)
	fn := &ast.FuncLit{
		Params: []string{"a", "b"},
		Body: &ast.BlockStmt{Statements: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.BinaryExpr{
				Op:    ast.OpAdd,
				Left:  &ast.Identifier{Name: "a"},
				Right: &ast.Identifier{Name: "b"},
			}},
		}},
	}
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.FuncDecl{Name: "add", Fn: fn},
		&ast.LetStmt{Name: "sum", Value: &ast.CallExpr{
			Callee: &ast.Identifier{Name: "add"},
			Args:   []ast.Expr{&ast.IntegerLit{Value: 1}, &ast.IntegerLit{Value: 2}},
		}},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 1, countOp(chunk, bytecode.OpCall))
	// One explicit return in the body, plus the implicit safety-net return
	// compileFunction always appends, plus the top-level program's own.
	require.GreaterOrEqual(t, countOp(chunk, bytecode.OpReturn), 2)
	// Jump(0) skips the function body inline; there must be at least one.
	require.GreaterOrEqual(t, countOp(chunk, bytecode.OpJump), 1)
	// sum is bound at the top level -> DefineGlobal (plus one for `add` itself).
	require.Equal(t, 2, countOp(chunk, bytecode.OpDefineGlobal))
}

func TestCompileWhileBreakContinue(t *testing.T) {
	// let i = 0
	// while i < 3 {
	//   if i == 1 { continue }
	//   if i == 2 { break }
	// }
	body := &ast.BlockStmt{Statements: []ast.Stmt{
		&ast.IfStmt{
			Cond: &ast.BinaryExpr{Op: ast.OpEqual, Left: &ast.Identifier{Name: "i"}, Right: &ast.IntegerLit{Value: 1}},
			Then: &ast.BlockStmt{Statements: []ast.Stmt{&ast.ContinueStmt{}}},
		},
		&ast.IfStmt{
			Cond: &ast.BinaryExpr{Op: ast.OpEqual, Left: &ast.Identifier{Name: "i"}, Right: &ast.IntegerLit{Value: 2}},
			Then: &ast.BlockStmt{Statements: []ast.Stmt{&ast.BreakStmt{}}},
		},
	}}
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.LetStmt{Name: "i", Value: &ast.IntegerLit{Value: 0}},
		&ast.WhileStmt{
			Cond: &ast.BinaryExpr{Op: ast.OpLess, Left: &ast.Identifier{Name: "i"}, Right: &ast.IntegerLit{Value: 3}},
			Body: body,
		},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	// One JumpBack closes the loop; the continue emits a second one.
	require.Equal(t, 2, countOp(chunk, bytecode.OpJumpBack))
	require.GreaterOrEqual(t, countOp(chunk, bytecode.OpJumpIfFalse), 3)
}

func TestCompileBreakOutsideLoopIsError(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{&ast.BreakStmt{}}}
	_, _, err := New().Compile(prog)
	require.ErrorIs(t, err, ErrBreakOutsideLoop)
}

func TestCompileClassWithDuplicateMethodIsError(t *testing.T) {
	fn := &ast.FuncLit{Body: &ast.BlockStmt{}}
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ClassDecl{Name: "Animal", Methods: []ast.MethodDecl{
			{Name: "hablar", Fn: fn},
			{Name: "hablar", Fn: fn},
		}},
	}}
	_, _, err := New().Compile(prog)
	require.ErrorIs(t, err, ErrDuplicateMethod)
}

func TestCompileClassInheritance(t *testing.T) {
	greetFn := &ast.FuncLit{Body: &ast.BlockStmt{Statements: []ast.Stmt{
		&ast.ReturnStmt{Value: &ast.StringLit{Value: "hola"}},
	}}}
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ClassDecl{Name: "Animal", Methods: []ast.MethodDecl{{Name: "saludar", Fn: greetFn}}},
		&ast.ClassDecl{Name: "Perro", Parent: "Animal"},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 2, countOp(chunk, bytecode.OpMakeClass))
	require.Equal(t, 1, countOp(chunk, bytecode.OpMethod))
}

func TestCompileTryCatchFinally(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.TryStmt{
			Body:       &ast.BlockStmt{Statements: []ast.Stmt{&ast.ThrowStmt{Value: &ast.StringLit{Value: "boom"}}}},
			CatchParam: "err",
			Catch:      &ast.BlockStmt{Statements: []ast.Stmt{&ast.PrintStmt{X: &ast.Identifier{Name: "err"}}}},
			Finally:    &ast.BlockStmt{Statements: []ast.Stmt{&ast.PrintStmt{X: &ast.StringLit{Value: "done"}}}},
		},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 1, countOp(chunk, bytecode.OpPushTry))
	require.Equal(t, 1, countOp(chunk, bytecode.OpPopTry))
	require.Equal(t, 1, countOp(chunk, bytecode.OpThrow))
	require.Equal(t, 1, countOp(chunk, bytecode.OpGetError))
	require.Equal(t, 2, countOp(chunk, bytecode.OpCall)) // the two imprimir calls
}

func TestCompileLogicalAndOrShortCircuit(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.LetStmt{Name: "x", Value: &ast.LogicalExpr{
			Op:    ast.LogicalAnd,
			Left:  &ast.BoolLit{Value: true},
			Right: &ast.BoolLit{Value: false},
		}},
		&ast.LetStmt{Name: "y", Value: &ast.LogicalExpr{
			Op:    ast.LogicalOr,
			Left:  &ast.BoolLit{Value: false},
			Right: &ast.BoolLit{Value: true},
		}},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 2, countOp(chunk, bytecode.OpJumpIfFalse))
	require.Equal(t, 1, countOp(chunk, bytecode.OpJump))
}

func TestCompileListAndDictLiterals(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.LetStmt{Name: "xs", Value: &ast.ListLit{Elements: []ast.Expr{
			&ast.IntegerLit{Value: 1}, &ast.IntegerLit{Value: 2}, &ast.IntegerLit{Value: 3},
		}}},
		&ast.LetStmt{Name: "d", Value: &ast.DictLit{Entries: []ast.DictEntry{
			{Key: &ast.StringLit{Value: "a"}, Value: &ast.IntegerLit{Value: 1}},
		}}},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 1, countOp(chunk, bytecode.OpBuildList))
	require.Equal(t, 1, countOp(chunk, bytecode.OpBuildDict))
}

func TestCompileIndexAndPropAssign(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ExprStmt{X: &ast.AssignExpr{
			Target: &ast.IndexExpr{Receiver: &ast.Identifier{Name: "xs"}, Index: &ast.IntegerLit{Value: 0}},
			Value:  &ast.IntegerLit{Value: 9},
		}},
		&ast.ExprStmt{X: &ast.AssignExpr{
			Target: &ast.PropExpr{Receiver: &ast.Identifier{Name: "obj"}, Name: "valor"},
			Value:  &ast.IntegerLit{Value: 1},
		}},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 1, countOp(chunk, bytecode.OpIndexSet))
	require.Equal(t, 1, countOp(chunk, bytecode.OpPropSet))
}

func TestMethodBodyReservesRegisterZeroForSelf(t *testing.T) {
	// class Counter { func valor() { return self } }
	method := &ast.FuncLit{Body: &ast.BlockStmt{Statements: []ast.Stmt{
		&ast.ReturnStmt{Value: &ast.Identifier{Name: "self"}},
	}}}
	prog := &ast.Program{Statements: []ast.Stmt{
		&ast.ClassDecl{Name: "Counter", Methods: []ast.MethodDecl{{Name: "valor", Fn: method}}},
	}}
	chunk, _, err := New().Compile(prog)
	require.NoError(t, err)
	// `self` resolves to local register 0: no global lookup is emitted, and
	// the method's explicit Return (the first Return in the chunk) reads R0.
	require.Equal(t, 0, countOp(chunk, bytecode.OpGetGlobal))
	for _, ins := range chunk.Code {
		op, a, _, _, _ := bytecode.Decode(ins)
		if op == bytecode.OpReturn {
			require.Equal(t, uint8(0), a)
			break
		}
	}
}
