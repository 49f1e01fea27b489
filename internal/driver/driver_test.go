package driver

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	. "asl/internal/astbuild"
	"asl/internal/ast"
)

func TestCompileValidProgramProducesListing(t *testing.T) {
	ast.ResetIDs()
	prog := Program(Function("main", Params(), nil,
		Decls(BasicDecl("int", "x")),
		Stmts(Assign(Ident("x"), IntLit("1")), WriteExpr(Ident("x"))),
	))

	result := Compile(prog, zap.NewNop())
	if len(result.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", result.Diagnostics)
	}
	if len(result.Subroutines) != 1 {
		t.Fatalf("expected 1 subroutine, got %d", len(result.Subroutines))
	}

	var buf bytes.Buffer
	if err := Render(&buf, result); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "func main") {
		t.Fatalf("rendered listing missing function header: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "RETURN") {
		t.Fatalf("rendered listing missing trailing RETURN: %s", buf.String())
	}
}

func TestCompileInvalidProgramReportsDiagnostics(t *testing.T) {
	ast.ResetIDs()
	prog := Program(Function("main", Params(), nil,
		Decls(BasicDecl("int", "x")),
		Stmts(Assign(Ident("x"), BoolLit("true"))),
	))

	result := Compile(prog, zap.NewNop())
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected diagnostics for incompatible assignment")
	}
	if len(result.Subroutines) != 0 {
		t.Fatalf("expected no subroutines for the failed function, got %d", len(result.Subroutines))
	}
}

func TestReadASTRoundtrip(t *testing.T) {
	ast.ResetIDs()
	original := Program(Function("main", Params(), nil, Decls(), Stmts()))

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := ReadAST(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Kind != original.Kind {
		t.Fatalf("root kind mismatch: got %v, want %v", decoded.Kind, original.Kind)
	}
}

// TestReadASTAssignsFreshUniqueIDs guards against a parser dump that
// omits "id" fields (or carries duplicate/zero ones): every node in the
// ingested tree must still come out with a distinct id, since decor's
// side tables key on it.
func TestReadASTAssignsFreshUniqueIDs(t *testing.T) {
	raw := `{
		"kind": "Program",
		"children": [{
			"kind": "FunctionList",
			"children": [{
				"kind": "Function",
				"data": "main",
				"children": [
					{"kind": "ParamList"},
					null,
					{"kind": "DeclarationList"},
					{"kind": "StatementList", "children": [
						{"kind": "NullStmt"},
						{"kind": "NullStmt"}
					]}
				]
			}]
		}]
	}`

	decoded, err := ReadAST(strings.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[int]bool)
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.ID == 0 {
			t.Fatal("expected every ingested node to receive a nonzero id")
		}
		if seen[n.ID] {
			t.Fatalf("duplicate id %d assigned during ingestion", n.ID)
		}
		seen[n.ID] = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(decoded)
	// Program, FunctionList, Function, ParamList, DeclarationList,
	// StatementList, and two NullStmts: 8 real nodes. The nil return-type
	// slot contributes no id.
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct ids, got %d", len(seen))
	}
}

func TestLoadConfigMissingFileIsNotError(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/aslc.yaml")
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Verbose || cfg.Output != "" {
		t.Fatal("missing config file should yield zero-value Config")
	}
}
