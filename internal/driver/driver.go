// Package driver wires SymbolPass, TypeCheckPass and CodeGenPass into a
// single compilation, and reads the external parser's AST dump plus an
// optional YAML configuration file.
//
// Grounded on main.go's run(opt) pipeline (hhramberg-go-vslc): read
// input, run the fixed pass sequence, report diagnostics or emit the
// listing. JSON AST ingestion replaces frontend.Parse/util.ReadSource
// since concrete lexing/parsing is explicitly out of scope (spec.md
// §1); logging uses go.uber.org/zap and error wrapping uses
// github.com/pkg/errors, both named in SPEC_FULL.md's AMBIENT STACK.
package driver

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"asl/internal/ast"
	"asl/internal/code"
	"asl/internal/codegen"
	"asl/internal/decor"
	"asl/internal/diag"
	"asl/internal/sema"
	"asl/internal/symtab"
	"asl/internal/types"
)

// Config is the optional on-disk configuration file (spec.md's AMBIENT
// STACK: a compiler accepts flags directly, or a config file for CI
// use), loaded with gopkg.in/yaml.v3.
type Config struct {
	Verbose bool   `yaml:"verbose"`
	Output  string `yaml:"output"`
}

// LoadConfig reads and parses a YAML configuration file at path. A
// missing file is not an error — callers fall back to flag defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing config file")
	}
	return cfg, nil
}

// ReadAST decodes a JSON-encoded syntax tree from r, in the node shape
// ast.Node defines (spec.md §6: program/function/declarations/
// statements/expressions), then assigns every node a fresh monotonic id
// (SPEC_FULL.md §3: ingestion assigns ids, standing in for a parser that
// would). The document's own "id" fields, if any, are discarded — decor's
// side tables require distinct ids per node in a unit, which a raw
// external dump is not guaranteed to carry.
func ReadAST(r io.Reader) (*ast.Node, error) {
	var root ast.Node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Wrap(err, "decoding syntax tree")
	}
	ast.AssignIDs(&root)
	return &root, nil
}

// Result is the outcome of compiling one program.
type Result struct {
	Diagnostics []diag.Diagnostic
	Subroutines []*code.Subroutine
}

// Compile runs SymbolPass, TypeCheckPass and then CodeGenPass over
// program (spec.md §5 ordering). When diagnostics were raised,
// CodeGenPass skips every function a diagnostic was attributed to, so
// the Result carries listings only for the unaffected functions.
func Compile(program *ast.Node, log *zap.Logger) Result {
	reg := types.NewRegistry()
	tab := symtab.New()
	dec := decor.New()
	sink := diag.NewSink()

	log.Debug("running SymbolPass")
	sema.NewSymbolPass(reg, tab, dec, sink).Run(program)

	log.Debug("running TypeCheckPass")
	sema.NewTypeCheckPass(reg, tab, dec, sink).Run(program)

	if sink.HasErrors() {
		log.Info("compilation has diagnostics", zap.Int("diagnostics", sink.Len()))
		log.Debug("running CodeGenPass for unaffected functions")
		subs := codegen.NewCodeGenPass(reg, tab, dec).Run(program, sink.FailedFuncs())
		return Result{Diagnostics: sink.Sorted(), Subroutines: subs}
	}

	log.Debug("running CodeGenPass")
	subs := codegen.NewCodeGenPass(reg, tab, dec).Run(program, nil)
	return Result{Diagnostics: sink.Sorted(), Subroutines: subs}
}

// Render writes result's instruction listing to w, one subroutine per
// function (spec.md §6).
func Render(w io.Writer, result Result) error {
	for _, sub := range result.Subroutines {
		if _, err := io.WriteString(w, sub.String()); err != nil {
			return errors.Wrap(err, "writing instruction listing")
		}
	}
	return nil
}
