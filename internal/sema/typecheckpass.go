// TypeCheckPass is grounded rule-for-rule on original_source/asl/
// TypeCheckListener.cpp (visitExpr/visitTypeCheck per-context methods)
// and on ir/validate.go's validateExpr/validateRel/validateAssign
// recursion shape (hhramberg-go-vslc), generalized from two primitives
// to ASL's four and extended with arrays, function calls and boolean
// short-circuit-free operators the teacher's two-primitive language
// does not have. The Pair_access/first-second construct present in
// TypeCheckListener.cpp is deliberately not carried over: ASL has no
// user-defined types beyond fixed-length primitive arrays.
package sema

import (
	"asl/internal/ast"
	"asl/internal/decor"
	"asl/internal/diag"
	"asl/internal/symtab"
	"asl/internal/types"
)

// TypeCheckPass propagates and validates expression types, marks
// l-values, and emits semantic errors.
type TypeCheckPass struct {
	reg  *types.Registry
	tab  *symtab.Table
	dec  *decor.Store
	sink *diag.Sink

	// funcRetStack tracks the return type of the function currently
	// being walked, so Return statements can validate against it.
	funcRetStack []types.ID
	// funcNameStack parallels funcRetStack, attributing diagnostics to
	// the enclosing function so CodeGenPass can suppress only the
	// listing for the functions that actually failed.
	funcNameStack []string
}

// report records a diagnostic attributed to the innermost function
// being walked, or unattributed at program scope.
func (p *TypeCheckPass) report(kind diag.Kind, line, pos int, format string, args ...any) {
	fn := ""
	if n := len(p.funcNameStack); n > 0 {
		fn = p.funcNameStack[n-1]
	}
	p.sink.ReportIn(fn, kind, line, pos, format, args...)
}

// NewTypeCheckPass returns a TypeCheckPass sharing reg, tab, dec and
// sink with SymbolPass and CodeGenPass.
func NewTypeCheckPass(reg *types.Registry, tab *symtab.Table, dec *decor.Store, sink *diag.Sink) *TypeCheckPass {
	return &TypeCheckPass{reg: reg, tab: tab, dec: dec, sink: sink}
}

// Run re-enters every scope SymbolPass built and validates the program.
func (p *TypeCheckPass) Run(program *ast.Node) {
	scopeID, _ := p.dec.Scope(program.ID)
	p.tab.PushThisScope(scopeID)

	funcList := program.Child(0)
	if funcList != nil {
		for _, fn := range funcList.Children {
			p.function(fn)
		}
	}

	p.tab.PopScope()

	if p.tab.NoMainProperlyDeclared(p.reg) {
		p.sink.Report(diag.NoMainProperlyDeclared, program.Line, program.Pos,
			"no function \"main\" with no parameters and void return is declared")
	}
}

func (p *TypeCheckPass) function(fn *ast.Node) {
	scopeID, _ := p.dec.Scope(fn.ID)
	p.tab.PushThisScope(scopeID)

	funcType, _ := p.dec.Type(fn.ID)
	p.funcRetStack = append(p.funcRetStack, p.reg.ReturnType(funcType))
	p.funcNameStack = append(p.funcNameStack, fn.Data)

	stmtList := fn.Child(3)
	if stmtList != nil {
		p.statements(stmtList)
	}

	p.funcRetStack = p.funcRetStack[:len(p.funcRetStack)-1]
	p.funcNameStack = p.funcNameStack[:len(p.funcNameStack)-1]
	p.tab.PopScope()
}

func (p *TypeCheckPass) currentReturnType() types.ID {
	if len(p.funcRetStack) == 0 {
		return p.reg.VoidTy()
	}
	return p.funcRetStack[len(p.funcRetStack)-1]
}

func (p *TypeCheckPass) statements(list *ast.Node) {
	for _, s := range list.Children {
		p.statement(s)
	}
}

func (p *TypeCheckPass) statement(s *ast.Node) {
	switch s.Kind {
	case ast.AssignStmt:
		left := s.Child(0)
		right := s.Child(1)
		lt := p.expr(left)
		rt := p.expr(right)
		if !p.dec.IsLvalue(left.ID) {
			p.report(diag.NonReferenceableLeft, left.Line, left.Pos, "left side of assignment is not assignable")
		} else if !p.reg.Copyable(lt, rt) {
			p.report(diag.IncompatibleAssignment, s.Line, s.Pos,
				"cannot assign %s to %s", p.reg.Name(rt), p.reg.Name(lt))
		}
	case ast.IfStmt:
		cond := s.Child(0)
		ct := p.expr(cond)
		if !p.reg.IsBoolean(ct) && !p.reg.IsError(ct) {
			p.report(diag.BooleanRequired, cond.Line, cond.Pos, "if condition must be boolean")
		}
		if then := s.Child(1); then != nil {
			p.statements(then)
		}
		if els := s.Child(2); els != nil {
			p.statements(els)
		}
	case ast.WhileStmt:
		cond := s.Child(0)
		ct := p.expr(cond)
		if !p.reg.IsBoolean(ct) && !p.reg.IsError(ct) {
			p.report(diag.BooleanRequired, cond.Line, cond.Pos, "while condition must be boolean")
		}
		if body := s.Child(1); body != nil {
			p.statements(body)
		}
	case ast.ProcCallStmt:
		p.call(s, true)
	case ast.ReadStmt:
		target := s.Child(0)
		tt := p.expr(target)
		if !p.dec.IsLvalue(target.ID) {
			p.report(diag.NonReferenceableExpression, target.Line, target.Pos, "read target must be a referenceable variable")
		} else if !p.reg.IsPrimitive(tt) && !p.reg.IsError(tt) {
			p.report(diag.ReadWriteRequireBasic, target.Line, target.Pos, "read target must be a primitive variable")
		}
	case ast.WriteExprStmt:
		operand := s.Child(0)
		ot := p.expr(operand)
		if !p.reg.IsPrimitive(ot) && !p.reg.IsError(ot) {
			p.report(diag.ReadWriteRequireBasic, operand.Line, operand.Pos, "write operand must be primitive")
		}
	case ast.WriteStringStmt:
		// literal text, nothing to type-check
	case ast.ReturnStmt:
		retType := p.currentReturnType()
		expr := s.Child(0)
		if expr == nil {
			if !p.reg.IsVoid(retType) {
				p.report(diag.IncompatibleReturn, s.Line, s.Pos,
					"function declared %s must return a value", p.reg.Name(retType))
			}
			return
		}
		if p.reg.IsVoid(retType) {
			p.report(diag.IncompatibleReturn, s.Line, s.Pos, "void function may not return a value")
			p.expr(expr)
			return
		}
		et := p.expr(expr)
		if !p.reg.Copyable(retType, et) {
			p.report(diag.IncompatibleReturn, s.Line, s.Pos,
				"cannot return %s from function declared %s", p.reg.Name(et), p.reg.Name(retType))
		}
	case ast.NullStmt:
		// no-op
	}
}

// expr evaluates n bottom-up, sets its type and is_lvalue decorations,
// and returns the resolved type.
func (p *TypeCheckPass) expr(n *ast.Node) types.ID {
	var t types.ID
	lvalue := false

	switch n.Kind {
	case ast.Identifier:
		name := n.Data
		if p.tab.FindInStack(name) < 0 {
			p.report(diag.UndeclaredIdent, n.Line, n.Pos, "%q is not declared", name)
			t = p.reg.ErrorTy()
			lvalue = true
		} else {
			t = p.tab.GetType(name)
			lvalue = !p.tab.IsFunctionClass(name)
		}

	case ast.IntLit:
		t = p.reg.IntegerTy()
	case ast.FloatLit:
		t = p.reg.FloatTy()
	case ast.CharLit:
		t = p.reg.CharacterTy()
	case ast.BoolLit:
		t = p.reg.BooleanTy()

	case ast.Paren:
		inner := n.Child(0)
		t = p.expr(inner)
		lvalue = p.dec.IsLvalue(inner.ID)

	case ast.ArrayAccess:
		arr := n.Child(0)
		idx := n.Child(1)
		at := p.expr(arr)
		it := p.expr(idx)
		switch {
		case p.reg.IsError(at):
			t = p.reg.ErrorTy()
		case !p.reg.IsArray(at):
			p.report(diag.NonArrayInIndex, arr.Line, arr.Pos, "indexed expression is not an array")
			t = p.reg.ErrorTy()
		default:
			if !p.reg.IsInteger(it) && !p.reg.IsError(it) {
				p.report(diag.NonIntegerIndex, idx.Line, idx.Pos, "array index must be integer")
			}
			t = p.reg.ArrayElem(at)
		}
		lvalue = true

	case ast.Unary:
		operand := n.Child(0)
		ot := p.expr(operand)
		switch n.Data {
		case "not":
			if !p.reg.IsBoolean(ot) && !p.reg.IsError(ot) {
				p.report(diag.IncompatibleOperator, n.Line, n.Pos, "'not' requires a boolean operand")
				t = p.reg.ErrorTy()
			} else {
				t = p.reg.BooleanTy()
			}
		case "+", "-":
			if !p.reg.IsNumeric(ot) && !p.reg.IsError(ot) {
				p.report(diag.IncompatibleOperator, n.Line, n.Pos, "unary %q requires a numeric operand", n.Data)
				t = p.reg.ErrorTy()
			} else {
				t = ot
			}
		default:
			t = p.reg.ErrorTy()
		}

	case ast.Binary:
		t = p.binary(n)

	case ast.Call:
		t = p.call(n, false)

	case ast.StringLit:
		t = p.reg.ErrorTy() // strings are not expression-valued (spec Non-goals)

	default:
		t = p.reg.ErrorTy()
	}

	p.dec.SetType(n.ID, t)
	p.dec.SetLvalue(n.ID, lvalue)
	return t
}

func (p *TypeCheckPass) binary(n *ast.Node) types.ID {
	lhs := n.Child(0)
	rhs := n.Child(1)
	lt := p.expr(lhs)
	rt := p.expr(rhs)
	op := n.Data

	if p.reg.IsError(lt) || p.reg.IsError(rt) {
		return p.reg.ErrorTy()
	}

	switch op {
	case "+", "-", "*":
		if !p.reg.IsNumeric(lt) || !p.reg.IsNumeric(rt) {
			p.report(diag.IncompatibleOperator, n.Line, n.Pos, "%q requires numeric operands", op)
			return p.reg.ErrorTy()
		}
		if p.reg.IsFloat(lt) || p.reg.IsFloat(rt) {
			return p.reg.FloatTy()
		}
		return p.reg.IntegerTy()
	case "/":
		if !p.reg.IsNumeric(lt) || !p.reg.IsNumeric(rt) {
			p.report(diag.IncompatibleOperator, n.Line, n.Pos, "%q requires numeric operands", op)
			return p.reg.ErrorTy()
		}
		if p.reg.IsFloat(lt) || p.reg.IsFloat(rt) {
			return p.reg.FloatTy()
		}
		return p.reg.IntegerTy()
	case "%":
		if !p.reg.IsInteger(lt) || !p.reg.IsInteger(rt) {
			p.report(diag.IncompatibleOperator, n.Line, n.Pos, "%% requires integer operands")
			return p.reg.ErrorTy()
		}
		return p.reg.IntegerTy()
	case "==", "!=", "<", "<=", ">", ">=":
		if !p.reg.Comparable(lt, rt, op) {
			p.report(diag.IncompatibleOperator, n.Line, n.Pos, "%q not defined between %s and %s", op, p.reg.Name(lt), p.reg.Name(rt))
			return p.reg.ErrorTy()
		}
		return p.reg.BooleanTy()
	case "and", "or":
		if !p.reg.IsBoolean(lt) || !p.reg.IsBoolean(rt) {
			p.report(diag.IncompatibleOperator, n.Line, n.Pos, "%q requires boolean operands", op)
			return p.reg.ErrorTy()
		}
		return p.reg.BooleanTy()
	default:
		return p.reg.ErrorTy()
	}
}

// call validates a Call expression or ProcCallStmt node against its
// callee's function type. asStmt distinguishes the is_not_function
// check (void-as-value) from callable-at-all checks (spec.md §9 open
// question resolution): a proc-call statement may target a void
// function, a Call expression may not.
func (p *TypeCheckPass) call(n *ast.Node, asStmt bool) types.ID {
	name := n.Data
	if p.tab.FindInStack(name) < 0 {
		p.report(diag.UndeclaredIdent, n.Line, n.Pos, "%q is not declared", name)
		return p.reg.ErrorTy()
	}
	if !p.tab.IsFunctionClass(name) {
		p.report(diag.IsNotCallable, n.Line, n.Pos, "%q is not a function", name)
		return p.reg.ErrorTy()
	}
	funcType := p.tab.GetType(name)

	var args *ast.Node
	if argList := n.Child(0); argList != nil {
		args = argList
	}
	var argTypes []types.ID
	if args != nil {
		for _, a := range args.Children {
			argTypes = append(argTypes, p.expr(a))
		}
	}

	expected := p.reg.ParamCount(funcType)
	if len(argTypes) != expected {
		p.report(diag.NumberOfParameters, n.Line, n.Pos,
			"%q expects %d argument(s), got %d", name, expected, len(argTypes))
		return p.reg.ErrorTy()
	}
	bad := false
	for i, at := range argTypes {
		pt := p.reg.ParamType(funcType, i)
		if p.reg.IsError(at) {
			continue
		}
		if !p.reg.Copyable(pt, at) {
			p.report(diag.IncompatibleParameter, n.Line, n.Pos,
				"argument %d of %q: cannot pass %s as %s", i+1, name, p.reg.Name(at), p.reg.Name(pt))
			bad = true
		}
	}
	if bad {
		return p.reg.ErrorTy()
	}

	ret := p.reg.ReturnType(funcType)
	if !asStmt && p.reg.IsVoid(ret) {
		p.report(diag.IsNotFunction, n.Line, n.Pos, "%q does not return a value", name)
		return p.reg.ErrorTy()
	}
	return ret
}
