// Package sema implements SymbolPass and TypeCheckPass (spec.md §4.5,
// §4.6): the two tree-walking passes that run between parsing and code
// generation.
//
// SymbolPass is grounded on original_source/asl/SymbolsListener.cpp
// (enterFunction/enterDeclaration/enterVariable_decl) and on the
// recursive post-order visitor shape of ir/validate.go's ValidateTree
// (hhramberg-go-vslc), rebuilt synchronous and single-threaded per
// spec.md §5 rather than validate.go's goroutine-per-function model
// (REDESIGN FLAG, resolved in SPEC_FULL.md §5).
package sema

import (
	"strconv"

	"asl/internal/ast"
	"asl/internal/decor"
	"asl/internal/diag"
	"asl/internal/symtab"
	"asl/internal/types"
)

// SymbolPass builds the scope tree, inserting function signatures and
// variable declarations, and computes type ids on declaration nodes.
type SymbolPass struct {
	reg   *types.Registry
	tab   *symtab.Table
	dec   *decor.Store
	sink  *diag.Sink
	fn    string // function being declared, for diagnostic attribution
}

// NewSymbolPass returns a SymbolPass sharing reg, tab, dec and sink with
// the passes that run after it.
func NewSymbolPass(reg *types.Registry, tab *symtab.Table, dec *decor.Store, sink *diag.Sink) *SymbolPass {
	return &SymbolPass{reg: reg, tab: tab, dec: dec, sink: sink}
}

// Run walks program, a Program node, pushing the global scope and then
// one function scope per Function child.
func (p *SymbolPass) Run(program *ast.Node) {
	global := p.tab.PushNewScope(symtab.GlobalScopeName)
	p.dec.SetScope(program.ID, global)

	funcList := program.Child(0)
	if funcList == nil {
		p.tab.PopScope()
		return
	}
	for _, fn := range funcList.Children {
		p.function(fn)
	}
	p.tab.PopScope()
}

func (p *SymbolPass) function(fn *ast.Node) {
	name := fn.Data
	if _, ok := p.tab.FindInCurrent(name); ok {
		p.sink.Report(diag.DeclaredIdent, fn.Line, fn.Pos, "function %q already declared", name)
	}

	p.fn = name
	defer func() { p.fn = "" }()

	scopeID := p.tab.PushNewScope(name)
	p.dec.SetScope(fn.ID, scopeID)

	paramList := fn.Child(0)
	typeName := fn.Child(1)
	declList := fn.Child(2)
	stmtList := fn.Child(3)

	var paramTypes []types.ID
	if paramList != nil {
		for _, param := range paramList.Children {
			paramTypes = append(paramTypes, p.declareParam(param))
		}
	}

	retType := p.reg.VoidTy()
	if typeName != nil {
		retType = p.primitiveType(typeName)
	}

	if declList != nil {
		p.declarations(declList)
	}

	funcType := p.reg.CreateFunction(paramTypes, retType)
	p.dec.SetType(fn.ID, funcType)

	p.tab.PopScope()

	// The function symbol belongs to the enclosing (now-current) scope.
	if err := p.tab.AddFunction(name, funcType); err != nil {
		// Duplicate already reported above; add is best-effort so later
		// passes still find a symbol to resolve calls against.
		_ = err
	}

	_ = stmtList // visited by TypeCheckPass/CodeGenPass, not SymbolPass
}

func (p *SymbolPass) declareParam(param *ast.Node) types.ID {
	switch param.Kind {
	case ast.BasicParamDecl:
		typeName := param.Child(0)
		t := p.primitiveType(typeName)
		name := param.Data
		if _, ok := p.tab.FindInCurrent(name); ok {
			p.sink.ReportIn(p.fn, diag.DeclaredIdent, param.Line, param.Pos, "parameter %q already declared", name)
		} else if err := p.tab.AddParameter(name, t); err != nil {
			p.sink.ReportIn(p.fn, diag.DeclaredIdent, param.Line, param.Pos, "%v", err)
		}
		p.dec.SetType(param.ID, t)
		return t
	case ast.ArrayParamDecl:
		typeName := param.Child(0)
		elem := p.primitiveType(typeName)
		size := parseSize(param.Data)
		t := p.reg.CreateArray(size, elem)
		name := param.Child(1).Data
		if _, ok := p.tab.FindInCurrent(name); ok {
			p.sink.ReportIn(p.fn, diag.DeclaredIdent, param.Line, param.Pos, "parameter %q already declared", name)
		} else if err := p.tab.AddParameter(name, t); err != nil {
			p.sink.ReportIn(p.fn, diag.DeclaredIdent, param.Line, param.Pos, "%v", err)
		}
		p.dec.SetType(param.ID, t)
		return t
	default:
		return p.reg.ErrorTy()
	}
}

func (p *SymbolPass) declarations(declList *ast.Node) {
	for _, decl := range declList.Children {
		switch decl.Kind {
		case ast.BasicDecl:
			typeName := decl.Child(0)
			t := p.primitiveType(typeName)
			p.dec.SetType(decl.ID, t)
			for _, id := range decl.Children[1:] {
				name := id.Data
				if _, ok := p.tab.FindInCurrent(name); ok {
					p.sink.ReportIn(p.fn, diag.DeclaredIdent, id.Line, id.Pos, "identifier %q already declared", name)
					continue
				}
				if err := p.tab.AddLocal(name, t); err != nil {
					p.sink.ReportIn(p.fn, diag.DeclaredIdent, id.Line, id.Pos, "%v", err)
				}
				p.dec.SetType(id.ID, t)
			}
		case ast.ArrayDecl:
			typeName := decl.Child(0)
			elem := p.primitiveType(typeName)
			size := parseSize(decl.Data)
			t := p.reg.CreateArray(size, elem)
			p.dec.SetType(decl.ID, t)
			for _, id := range decl.Children[1:] {
				name := id.Data
				if _, ok := p.tab.FindInCurrent(name); ok {
					p.sink.ReportIn(p.fn, diag.DeclaredIdent, id.Line, id.Pos, "identifier %q already declared", name)
					continue
				}
				if err := p.tab.AddLocal(name, t); err != nil {
					p.sink.ReportIn(p.fn, diag.DeclaredIdent, id.Line, id.Pos, "%v", err)
				}
				p.dec.SetType(id.ID, t)
			}
		}
	}
}

// primitiveType resolves a TypeName node to a primitive type id and
// attaches it to the node (spec.md §4.5: "on a primitive type node,
// attach the primitive type id").
func (p *SymbolPass) primitiveType(tn *ast.Node) types.ID {
	var t types.ID
	switch tn.Data {
	case "int":
		t = p.reg.IntegerTy()
	case "float":
		t = p.reg.FloatTy()
	case "bool":
		t = p.reg.BooleanTy()
	case "char":
		t = p.reg.CharacterTy()
	default:
		t = p.reg.ErrorTy()
	}
	p.dec.SetType(tn.ID, t)
	return t
}

func parseSize(lit string) int {
	n, err := strconv.Atoi(lit)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
