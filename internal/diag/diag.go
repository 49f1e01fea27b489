// Package diag implements the diagnostic taxonomy and sink (spec.md §7):
// every semantic error SymbolPass and TypeCheckPass can raise, collected
// and reported in source order rather than discovery order.
//
// Grounded in shape on util/perror.go's accumulate-then-flush error sink
// (hhramberg-go-vslc), rebuilt synchronously (no goroutine/channel) per
// spec.md §5, with position-sorted output via golang.org/x/exp/slices
// (adopted the way nspcc-dev-neo-go and several other corpus repos use
// slices/maps for deterministic iteration over otherwise unordered
// collections) and github.com/fatih/color for severity-coded terminal
// output in Render, called from cmd/aslc, both grounded on the corpus
// repos named in SPEC_FULL.md's AMBIENT STACK section.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"golang.org/x/exp/slices"
)

// Kind enumerates every diagnostic spec.md §7 names.
type Kind int

const (
	DeclaredIdent Kind = iota
	UndeclaredIdent
	IncompatibleAssignment
	NonReferenceableLeft
	NonReferenceableExpression
	IncompatibleOperator
	BooleanRequired
	NonArrayInIndex
	NonIntegerIndex
	IsNotCallable
	IsNotFunction
	NumberOfParameters
	IncompatibleParameter
	ReadWriteRequireBasic
	IncompatibleReturn
	NoMainProperlyDeclared
)

var kindNames = [...]string{
	"declared_ident",
	"undeclared_ident",
	"incompatible_assignment",
	"non_referenceable_left",
	"non_referenceable_expression",
	"incompatible_operator",
	"boolean_required",
	"non_array_in_index",
	"non_integer_index",
	"is_not_callable",
	"is_not_function",
	"number_of_parameters",
	"incompatible_parameter",
	"read_write_require_basic",
	"incompatible_return",
	"no_main_properly_declared",
}

// String returns the snake_case diagnostic name spec.md §7 uses.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Diagnostic is a single reported error, positioned at the AST node
// that triggered it.
type Diagnostic struct {
	Kind Kind
	Line int
	Pos  int
	// Func names the enclosing function, empty for diagnostics raised
	// outside any function body (e.g. a duplicate function name, or
	// no_main_properly_declared). CodeGenPass uses this to suppress
	// the listing only for the functions that actually failed (spec.md
	// §8 scenario 6: "no listing for this function").
	Func    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Pos, d.Kind, d.Message)
}

// Sink accumulates diagnostics from both SymbolPass and TypeCheckPass.
// Neither pass halts the walk on error (spec.md §5): reporting continues
// so a single compile surfaces every error in the unit, not just the
// first.
type Sink struct {
	items []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends a diagnostic of the given kind, positioned at line/pos,
// with message formatted per format/args, not attributed to any
// function.
func (s *Sink) Report(kind Kind, line, pos int, format string, args ...any) {
	s.ReportIn("", kind, line, pos, format, args...)
}

// ReportIn is Report, additionally attributing the diagnostic to the
// function named fn.
func (s *Sink) ReportIn(fn string, kind Kind, line, pos int, format string, args ...any) {
	s.items = append(s.items, Diagnostic{
		Kind:    kind,
		Line:    line,
		Pos:     pos,
		Func:    fn,
		Message: fmt.Sprintf(format, args...),
	})
}

// FailedFuncs returns the set of non-empty Func names that have at
// least one reported diagnostic.
func (s *Sink) FailedFuncs() map[string]bool {
	out := make(map[string]bool)
	for _, d := range s.items {
		if d.Func != "" {
			out[d.Func] = true
		}
	}
	return out
}

// Len returns the number of diagnostics accumulated so far.
func (s *Sink) Len() int { return len(s.items) }

// HasErrors reports whether any diagnostic was reported.
func (s *Sink) HasErrors() bool { return len(s.items) > 0 }

// Sorted returns the accumulated diagnostics ordered by (line, pos),
// the order they are rendered in regardless of which pass or which
// function discovered them first.
func (s *Sink) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Pos - b.Pos
	})
	return out
}

// Render writes diags to w, one per line, highlighting the "error" tag
// in bold red via github.com/fatih/color (disabled automatically when
// stdout is not a terminal or NO_COLOR is set, per that package's own
// process-wide detection; w itself is not inspected).
// Callers pass Sink.Sorted()'s output, or any other diagnostic slice, so
// this does not require a live Sink.
func Render(w io.Writer, diags []Diagnostic) {
	red := color.New(color.FgRed, color.Bold)
	for _, d := range diags {
		red.Fprint(w, "error")
		fmt.Fprintf(w, " %d:%d: %s: %s\n", d.Line, d.Pos, d.Kind, d.Message)
	}
}
