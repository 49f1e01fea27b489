// Package astbuild provides small constructors for building ast.Node
// trees by hand, used by the sema and codegen package tests in place
// of a real parser (spec §1 treats concrete parsing as an external
// collaborator).
package astbuild

import "asl/internal/ast"

func Program(funcs ...*ast.Node) *ast.Node {
	return ast.New(ast.Program, 1, 1, "", ast.New(ast.FunctionList, 1, 1, "", funcs...))
}

func Function(name string, params, ret, decls, stmts *ast.Node) *ast.Node {
	return ast.New(ast.Function, 1, 1, name, params, ret, decls, stmts)
}

func Params(params ...*ast.Node) *ast.Node {
	return ast.New(ast.ParamList, 1, 1, "", params...)
}

func BasicParam(typeName, name string) *ast.Node {
	return ast.New(ast.BasicParamDecl, 1, 1, name, TypeName(typeName))
}

func ArrayParam(size int, typeName, name string) *ast.Node {
	return ast.New(ast.ArrayParamDecl, 1, 1, itoa(size), TypeName(typeName), Ident(name))
}

func TypeName(name string) *ast.Node {
	return ast.New(ast.TypeName, 1, 1, name)
}

func Decls(decls ...*ast.Node) *ast.Node {
	return ast.New(ast.DeclarationList, 1, 1, "", decls...)
}

func BasicDecl(typeName string, names ...string) *ast.Node {
	children := []*ast.Node{TypeName(typeName)}
	for _, n := range names {
		children = append(children, Ident(n))
	}
	return ast.New(ast.BasicDecl, 1, 1, "", children...)
}

func ArrayDecl(size int, typeName string, names ...string) *ast.Node {
	children := []*ast.Node{TypeName(typeName)}
	for _, n := range names {
		children = append(children, Ident(n))
	}
	return ast.New(ast.ArrayDecl, 1, 1, itoa(size), children...)
}

func Stmts(stmts ...*ast.Node) *ast.Node {
	return ast.New(ast.StatementList, 1, 1, "", stmts...)
}

func Assign(left, right *ast.Node) *ast.Node {
	return ast.New(ast.AssignStmt, 1, 1, "", left, right)
}

func If(cond, then, els *ast.Node) *ast.Node {
	return ast.New(ast.IfStmt, 1, 1, "", cond, then, els)
}

func While(cond, body *ast.Node) *ast.Node {
	return ast.New(ast.WhileStmt, 1, 1, "", cond, body)
}

func ProcCall(name string, args ...*ast.Node) *ast.Node {
	return ast.New(ast.ProcCallStmt, 1, 1, name, ArgList(args...))
}

func Read(target *ast.Node) *ast.Node {
	return ast.New(ast.ReadStmt, 1, 1, "", target)
}

func WriteExpr(e *ast.Node) *ast.Node {
	return ast.New(ast.WriteExprStmt, 1, 1, "", e)
}

func WriteString(lit string) *ast.Node {
	return ast.New(ast.WriteStringStmt, 1, 1, lit)
}

func Return(e *ast.Node) *ast.Node {
	return ast.New(ast.ReturnStmt, 1, 1, "", e)
}

func Null() *ast.Node {
	return ast.New(ast.NullStmt, 1, 1, "")
}

func Ident(name string) *ast.Node {
	return ast.New(ast.Identifier, 1, 1, name)
}

func IntLit(lit string) *ast.Node {
	return ast.New(ast.IntLit, 1, 1, lit)
}

func FloatLit(lit string) *ast.Node {
	return ast.New(ast.FloatLit, 1, 1, lit)
}

func CharLit(lit string) *ast.Node {
	return ast.New(ast.CharLit, 1, 1, lit)
}

func BoolLit(lit string) *ast.Node {
	return ast.New(ast.BoolLit, 1, 1, lit)
}

func Paren(e *ast.Node) *ast.Node {
	return ast.New(ast.Paren, 1, 1, "", e)
}

func Unary(op string, e *ast.Node) *ast.Node {
	return ast.New(ast.Unary, 1, 1, op, e)
}

func Binary(op string, l, r *ast.Node) *ast.Node {
	return ast.New(ast.Binary, 1, 1, op, l, r)
}

func Index(arr, idx *ast.Node) *ast.Node {
	return ast.New(ast.ArrayAccess, 1, 1, "", arr, idx)
}

func Call(name string, args ...*ast.Node) *ast.Node {
	return ast.New(ast.Call, 1, 1, name, ArgList(args...))
}

func ArgList(args ...*ast.Node) *ast.Node {
	return ast.New(ast.ArgList, 1, 1, "", args...)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
