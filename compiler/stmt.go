package compiler

import (
	"github.com/aguila-lang/aguila/ast"
	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/object"
	"github.com/aguila-lang/aguila/value"
)

func (c *Compiler) compileStmt(s ast.Stmt) error {
	switch v := s.(type) {
	case *ast.ExprStmt:
		_, err := c.compileExpr(v.X)
		return err
	case *ast.PrintStmt:
		return c.compilePrint(v)
	case *ast.LetStmt:
		return c.compileLet(v)
	case *ast.BlockStmt:
		return c.compileBlock(v)
	case *ast.IfStmt:
		return c.compileIf(v)
	case *ast.WhileStmt:
		return c.compileWhile(v)
	case *ast.BreakStmt:
		return c.compileBreak()
	case *ast.ContinueStmt:
		return c.compileContinue()
	case *ast.ReturnStmt:
		return c.compileReturn(v)
	case *ast.FuncDecl:
		return c.compileFuncDecl(v)
	case *ast.ClassDecl:
		return c.compileClassDecl(v)
	case *ast.TryStmt:
		return c.compileTry(v)
	case *ast.ThrowStmt:
		return c.compileThrow(v)
	case *ast.ImportStmt:
		return c.compileImport(v)
	default:
		panic("compiler: unhandled statement node")
	}
}

// compilePrint lowers `imprimir` to a call of the globally registered
// "imprimir" native (seeded by the VM at construction), keeping the opcode
// set exactly the one spec.md's instruction table names — no dedicated
// print instruction.
func (c *Compiler) compilePrint(s *ast.PrintStmt) error {
	base, err := c.reserveBlock(2)
	if err != nil {
		return err
	}
	idx := c.constantForString("imprimir")
	c.emitABx(bytecode.OpGetGlobal, base, idx)
	if err := c.compileExprInto(base+1, s.X); err != nil {
		return err
	}
	dst, err := c.allocTemp()
	if err != nil {
		return err
	}
	c.emitABC(bytecode.OpCall, dst, base, 1)
	return nil
}

func (c *Compiler) compileLet(s *ast.LetStmt) error {
	valReg, err := c.compileExpr(s.Value)
	if err != nil {
		return err
	}
	scope := c.current()
	if scope.isTopLevel {
		return c.bindName(s.Name, valReg)
	}
	if existing, ok := scope.locals[s.Name]; ok {
		c.emitABC(bytecode.OpMove, existing, valReg, 0)
		return nil
	}
	newReg, err := c.allocTemp()
	if err != nil {
		return err
	}
	c.emitABC(bytecode.OpMove, newReg, valReg, 0)
	scope.locals[s.Name] = newReg
	return nil
}

// compileBlock compiles a nested lexical scope: names it introduces are
// dropped from the current frame's locals map once the block ends (shadowing
// reverts), but registers are never reclaimed — allocation stays bump-only
// for the whole enclosing function, per spec.md.
func (c *Compiler) compileBlock(b *ast.BlockStmt) error {
	scope := c.current()
	saved := cloneLocals(scope.locals)
	for _, stmt := range b.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	scope.locals = saved
	return nil
}

func (c *Compiler) compileIf(s *ast.IfStmt) error {
	condReg, err := c.compileExpr(s.Cond)
	if err != nil {
		return err
	}
	elseJump := c.emitJump(bytecode.OpJumpIfFalse, condReg)
	if err := c.compileBlock(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		endJump := c.emitJump(bytecode.OpJump, 0)
		c.patchJumpHere(elseJump)
		if err := c.compileBlock(s.Else); err != nil {
			return err
		}
		c.patchJumpHere(endJump)
	} else {
		c.patchJumpHere(elseJump)
	}
	return nil
}

func (c *Compiler) compileWhile(s *ast.WhileStmt) error {
	scope := c.current()
	header := len(c.chunk.Code)
	condReg, err := c.compileExpr(s.Cond)
	if err != nil {
		return err
	}
	exitJump := c.emitJump(bytecode.OpJumpIfFalse, condReg)

	loop := &loopCtx{header: header}
	scope.loops = append(scope.loops, loop)
	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	scope.loops = scope.loops[:len(scope.loops)-1]

	c.emitJumpBackTo(header)
	c.patchJumpHere(exitJump)
	for _, bp := range loop.breakPatches {
		c.patchJumpHere(bp)
	}
	return nil
}

func (c *Compiler) compileBreak() error {
	loop := c.currentLoop()
	if loop == nil {
		return ErrBreakOutsideLoop
	}
	idx := c.emitJump(bytecode.OpJump, 0)
	loop.breakPatches = append(loop.breakPatches, idx)
	return nil
}

func (c *Compiler) compileContinue() error {
	loop := c.currentLoop()
	if loop == nil {
		return ErrBreakOutsideLoop
	}
	c.emitJumpBackTo(loop.header)
	return nil
}

func (c *Compiler) compileReturn(s *ast.ReturnStmt) error {
	var reg uint8
	var err error
	if s.Value != nil {
		reg, err = c.compileExpr(s.Value)
	} else {
		reg, err = c.loadConst(value.Nil())
	}
	if err != nil {
		return err
	}
	c.emitABC(bytecode.OpReturn, reg, 0, 0)
	return nil
}

// compileFunction emits fn's body inline: a placeholder Jump over the body
// (so straight-line execution of the enclosing code skips it), then the
// body itself in a fresh register scope, then an implicit `Return nil` as a
// safety net. It returns the body's entry PC, known as soon as the skip-jump
// is written.
func (c *Compiler) compileFunction(fn *ast.FuncLit, isMethod bool) (uint32, error) {
	skip := c.emitJump(bytecode.OpJump, 0)
	entryPC := uint32(len(c.chunk.Code))

	fnScope := newScope(false)
	if isMethod {
		fnScope.locals["self"] = 0
		fnScope.nextReg = 1
	}
	for _, p := range fn.Params {
		reg := uint8(fnScope.nextReg)
		if fnScope.nextReg > 255 {
			return 0, ErrRegisterOverflow
		}
		fnScope.locals[p] = reg
		fnScope.nextReg++
	}

	c.scopes = append(c.scopes, fnScope)
	for _, stmt := range fn.Body.Statements {
		if err := c.compileStmt(stmt); err != nil {
			c.scopes = c.scopes[:len(c.scopes)-1]
			return 0, err
		}
	}
	c.emitDefaultReturn()
	c.scopes = c.scopes[:len(c.scopes)-1]

	c.patchJumpHere(skip)
	return entryPC, nil
}

func (c *Compiler) compileFuncDecl(d *ast.FuncDecl) error {
	entryPC, err := c.compileFunction(d.Fn, false)
	if err != nil {
		return err
	}
	reg, err := c.allocTemp()
	if err != nil {
		return err
	}
	idx := c.chunk.AddConstant(value.Callable(entryPC))
	c.emitABx(bytecode.OpLoadConst, reg, idx)
	return c.bindName(d.Name, reg)
}

// compileClassDecl emits MakeClass followed by one Method instruction per
// declared method, per spec.md's compilation algorithm step 4.
func (c *Compiler) compileClassDecl(d *ast.ClassDecl) error {
	seen := make(map[string]bool, len(d.Methods))
	for _, m := range d.Methods {
		if seen[m.Name] {
			return ErrDuplicateMethod
		}
		seen[m.Name] = true
	}

	var parentReg uint8
	var err error
	if d.Parent != "" {
		parentReg, err = c.compileIdentifier(&ast.Identifier{Name: d.Parent})
		if err != nil {
			return err
		}
	} else {
		parentReg, err = c.loadConst(value.Nil())
		if err != nil {
			return err
		}
	}

	classReg, err := c.allocTemp()
	if err != nil {
		return err
	}
	nameIdx, err := c.constantForStringByte(d.Name)
	if err != nil {
		return err
	}
	c.emitABC(bytecode.OpMakeClass, classReg, nameIdx, parentReg)

	for _, m := range d.Methods {
		entryPC, err := c.compileFunction(m.Fn, true)
		if err != nil {
			return err
		}
		pcReg, err := c.allocTemp()
		if err != nil {
			return err
		}
		idx := c.chunk.AddConstant(value.Callable(entryPC))
		c.emitABx(bytecode.OpLoadConst, pcReg, idx)
		methodIdx, err := c.constantForStringByte(m.Name)
		if err != nil {
			return err
		}
		c.emitABC(bytecode.OpMethod, classReg, methodIdx, pcReg)
	}

	return c.bindName(d.Name, classReg)
}

// compileTry emits PushTry/PopTry framing around Body, lands the handler on
// the Catch block (binding CatchParam via GetError when present), then
// compiles Finally, if any, so it runs on both the success and the
// caught-error path — both converge on the same instruction right after
// Catch.
func (c *Compiler) compileTry(s *ast.TryStmt) error {
	pushIdx := c.emitJump(bytecode.OpPushTry, 0)
	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.emitABC(bytecode.OpPopTry, 0, 0, 0)
	skipCatch := c.emitJump(bytecode.OpJump, 0)

	c.patchJumpHere(pushIdx)
	if s.CatchParam != "" {
		errReg, err := c.allocTemp()
		if err != nil {
			return err
		}
		c.emitABC(bytecode.OpGetError, errReg, 0, 0)
		if err := c.bindName(s.CatchParam, errReg); err != nil {
			return err
		}
	}
	if s.Catch != nil {
		if err := c.compileBlock(s.Catch); err != nil {
			return err
		}
	}
	c.patchJumpHere(skipCatch)

	if s.Finally != nil {
		if err := c.compileBlock(s.Finally); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileThrow(s *ast.ThrowStmt) error {
	reg, err := c.compileExpr(s.Value)
	if err != nil {
		return err
	}
	c.emitABC(bytecode.OpThrow, reg, 0, 0)
	return nil
}

func (c *Compiler) compileImport(s *ast.ImportStmt) error {
	pathHandle := c.objects.Alloc(&object.Text{Value: s.Path})
	idx := c.chunk.AddConstant(value.Object(pathHandle))
	reg, err := c.allocTemp()
	if err != nil {
		return err
	}
	c.emitABx(bytecode.OpImport, reg, idx)
	return c.bindName(s.Name, reg)
}
