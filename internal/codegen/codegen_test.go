package codegen

import (
	"testing"

	. "asl/internal/astbuild"
	"asl/internal/code"
	"asl/internal/decor"
	"asl/internal/diag"
	"asl/internal/sema"
	"asl/internal/symtab"
	"asl/internal/types"

	"asl/internal/ast"
)

// compile runs the full three-pass pipeline over program and returns
// the resulting subroutines and diagnostics sink.
func compile(t *testing.T, program *ast.Node) ([]*code.Subroutine, *diag.Sink) {
	t.Helper()
	reg := types.NewRegistry()
	tab := symtab.New()
	dec := decor.New()
	sink := diag.NewSink()

	sema.NewSymbolPass(reg, tab, dec, sink).Run(program)
	sema.NewTypeCheckPass(reg, tab, dec, sink).Run(program)
	if sink.HasErrors() {
		return nil, sink
	}
	subs := NewCodeGenPass(reg, tab, dec).Run(program, nil)
	return subs, sink
}

func instOps(body code.List) []code.Opcode {
	ops := make([]code.Opcode, len(body))
	for i, inst := range body {
		ops[i] = inst.Op
	}
	return ops
}

func assertOps(t *testing.T, body code.List, want ...code.Opcode) {
	t.Helper()
	got := instOps(body)
	if len(got) != len(want) {
		t.Fatalf("opcode count mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("opcode %d mismatch: got %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

// Scenario 1 (spec.md §8): func main() var x:int endvar x := 2 + 3*4
// write x endfunc
func TestScenario1ArithmeticAndWrite(t *testing.T) {
	ast.ResetIDs()
	prog := Program(Function("main", Params(), nil,
		Decls(BasicDecl("int", "x")),
		Stmts(
			Assign(Ident("x"), Binary("+", IntLit("2"), Binary("*", IntLit("3"), IntLit("4")))),
			WriteExpr(Ident("x")),
		),
	))

	subs, sink := compile(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Sorted())
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subroutine, got %d", len(subs))
	}
	assertOps(t, subs[0].Body,
		code.ILOAD, code.ILOAD, code.ILOAD, code.MUL, code.ADD, code.LOAD, code.WRITEI, code.RETURN)

	body := subs[0].Body
	if body[3].Args[1] != body[1].Args[0] || body[3].Args[2] != body[2].Args[0] {
		t.Fatalf("MUL should multiply the two innermost operands: %v", body[3])
	}
	if body[5].Args[0] != "x" {
		t.Fatalf("final LOAD should target x: %v", body[5])
	}
}

// The code decoration (spec.md §4.3/§9) records, per node, the
// instructions that node's own lowering contributed: a leaf expression's
// slice is a prefix of its enclosing statement's slice, which also holds
// the instructions of everything beneath the statement.
func TestCodeDecorationRecordsPerNodeInstructions(t *testing.T) {
	ast.ResetIDs()
	lit := IntLit("2")
	mulRHS := IntLit("3")
	mulLHS := Binary("*", mulRHS, IntLit("4"))
	addExpr := Binary("+", lit, mulLHS)
	assignStmt := Assign(Ident("x"), addExpr)
	prog := Program(Function("main", Params(), nil,
		Decls(BasicDecl("int", "x")),
		Stmts(assignStmt),
	))

	reg := types.NewRegistry()
	tab := symtab.New()
	dec := decor.New()
	sink := diag.NewSink()
	sema.NewSymbolPass(reg, tab, dec, sink).Run(prog)
	sema.NewTypeCheckPass(reg, tab, dec, sink).Run(prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Sorted())
	}
	NewCodeGenPass(reg, tab, dec).Run(prog, nil)

	litCode, ok := dec.Code(lit.ID)
	if !ok || len(litCode) != 1 || litCode[0].Op != code.ILOAD {
		t.Fatalf("expected the literal's own code to be a single ILOAD, got %v", litCode)
	}

	stmtCode, ok := dec.Code(assignStmt.ID)
	if !ok || len(stmtCode) == 0 {
		t.Fatal("expected the assignment statement to have a non-empty code decoration")
	}
	if len(stmtCode) <= len(litCode) {
		t.Fatalf("statement code should be a superset of its leaf expression's code: stmt=%v lit=%v", stmtCode, litCode)
	}
}

// Scenario 2 (spec.md §8): func main() var x:int, y:float endvar y := x
// endfunc
func TestScenario2IntToFloatCoercion(t *testing.T) {
	ast.ResetIDs()
	prog := Program(Function("main", Params(), nil,
		Decls(BasicDecl("int", "x"), BasicDecl("float", "y")),
		Stmts(Assign(Ident("y"), Ident("x"))),
	))

	subs, sink := compile(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Sorted())
	}
	body := subs[0].Body
	assertOps(t, body, code.FLOAT, code.LOAD, code.RETURN)
	if body[0].Args[1] != "x" {
		t.Fatalf("FLOAT should coerce x: %v", body[0])
	}
	if body[1].Args[0] != "y" || body[1].Args[1] != body[0].Args[0] {
		t.Fatalf("LOAD should store the coerced temp into y: %v", body[1])
	}
}

// Scenario 3 (spec.md §8): func main() var a: array[3] of int endvar
// a[0] := a[1] + 1 endfunc
func TestScenario3ArrayAccess(t *testing.T) {
	ast.ResetIDs()
	prog := Program(Function("main", Params(), nil,
		Decls(ArrayDecl(3, "int", "a")),
		Stmts(Assign(Index(Ident("a"), IntLit("0")), Binary("+", Index(Ident("a"), IntLit("1")), IntLit("1")))),
	))

	subs, sink := compile(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Sorted())
	}
	body := subs[0].Body
	assertOps(t, body,
		code.ILOAD, // index 1
		code.LOADX, // read a[1]
		code.ILOAD, // literal 1
		code.ADD,   // a[1] + 1
		code.ILOAD, // index 0
		code.XLOAD, // write a[0]
		code.RETURN,
	)
	readIdx := body[0].Args[0]
	writeIdx := body[4].Args[0]
	if readIdx == writeIdx {
		t.Fatal("read and write index temps must be independent")
	}
}

// Scenario 4 (spec.md §8): func main() var b:bool endvar if b then
// b := not b endif endfunc
func TestScenario4IfNot(t *testing.T) {
	ast.ResetIDs()
	prog := Program(Function("main", Params(), nil,
		Decls(BasicDecl("bool", "b")),
		Stmts(If(Ident("b"), Stmts(Assign(Ident("b"), Unary("not", Ident("b")))), nil)),
	))

	subs, sink := compile(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Sorted())
	}
	body := subs[0].Body
	assertOps(t, body, code.FJUMP, code.NOT, code.LOAD, code.LABEL, code.RETURN)
	if body[0].Args[0] != "b" {
		t.Fatalf("FJUMP should test b: %v", body[0])
	}
	if body[0].Args[1] != body[3].Args[0] {
		t.Fatalf("FJUMP target should match the trailing LABEL: %v / %v", body[0], body[3])
	}
}

// Scenario 5 (spec.md §8): func f(x:int):int return x+1 endfunc func
// main() var y:int endvar y := f(2) endfunc
func TestScenario5Call(t *testing.T) {
	ast.ResetIDs()
	fn := Function("f", Params(BasicParam("int", "x")), TypeName("int"),
		Decls(),
		Stmts(Return(Binary("+", Ident("x"), IntLit("1")))),
	)
	main := Function("main", Params(), nil,
		Decls(BasicDecl("int", "y")),
		Stmts(Assign(Ident("y"), Call("f", IntLit("2")))),
	)
	prog := Program(fn, main)

	subs, sink := compile(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Sorted())
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subroutines, got %d", len(subs))
	}
	mainBody := subs[1].Body
	assertOps(t, mainBody,
		code.PUSH, code.ILOAD, code.PUSH, code.CALL, code.POP, code.POP, code.LOAD, code.RETURN)
	if mainBody[3].Args[0] != "f" {
		t.Fatalf("CALL should target f: %v", mainBody[3])
	}
}

// Scenario 6 (spec.md §8): func main() var x:int endvar x := true
// endfunc — diagnostic incompatible_assignment; no listing for this
// function.
func TestScenario6IncompatibleAssignmentSuppressesListing(t *testing.T) {
	ast.ResetIDs()
	prog := Program(Function("main", Params(), nil,
		Decls(BasicDecl("int", "x")),
		Stmts(Assign(Ident("x"), BoolLit("true"))),
	))

	reg := types.NewRegistry()
	tab := symtab.New()
	dec := decor.New()
	sink := diag.NewSink()
	sema.NewSymbolPass(reg, tab, dec, sink).Run(prog)
	sema.NewTypeCheckPass(reg, tab, dec, sink).Run(prog)

	if !sink.HasErrors() {
		t.Fatal("expected an incompatible_assignment diagnostic")
	}
	found := false
	for _, d := range sink.Sorted() {
		if d.Kind == diag.IncompatibleAssignment {
			found = true
		}
	}
	if !found {
		t.Fatal("expected incompatible_assignment among the diagnostics")
	}

	subs := NewCodeGenPass(reg, tab, dec).Run(prog, sink.FailedFuncs())
	if len(subs) != 0 {
		t.Fatalf("expected no listing for main, got %d subroutines", len(subs))
	}
}
