package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedByPosition(t *testing.T) {
	s := NewSink()
	s.Report(UndeclaredIdent, 3, 1, "z")
	s.Report(DeclaredIdent, 1, 5, "a")
	s.Report(DeclaredIdent, 1, 2, "b")

	sorted := s.Sorted()
	assert.Len(t, sorted, 3)
	assert.Equal(t, 2, sorted[0].Pos)
	assert.Equal(t, 5, sorted[1].Pos)
	assert.Equal(t, 3, sorted[2].Line)
}

func TestFailedFuncs(t *testing.T) {
	s := NewSink()
	s.ReportIn("f", IncompatibleAssignment, 1, 1, "bad")
	s.Report(NoMainProperlyDeclared, 0, 0, "no main")

	failed := s.FailedFuncs()
	assert.True(t, failed["f"])
	assert.Len(t, failed, 1)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "incompatible_assignment", IncompatibleAssignment.String())
}

func TestRenderWritesOneLinePerDiagnostic(t *testing.T) {
	s := NewSink()
	s.Report(UndeclaredIdent, 2, 4, "x")
	s.Report(IncompatibleAssignment, 5, 1, "y")

	var buf bytes.Buffer
	Render(&buf, s.Sorted())

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "2:4: undeclared_ident: x")
	assert.Contains(t, out, "5:1: incompatible_assignment: y")
}
