package decor

import (
	"testing"

	"asl/internal/code"
	"asl/internal/symtab"
	"asl/internal/types"
)

func TestAttributesRoundtrip(t *testing.T) {
	s := New()
	reg := types.NewRegistry()

	s.SetScope(1, symtab.ScopeID(2))
	if got, ok := s.Scope(1); !ok || got != symtab.ScopeID(2) {
		t.Fatal("scope attribute did not round-trip")
	}

	s.SetType(5, reg.IntegerTy())
	if got, ok := s.Type(5); !ok || got != reg.IntegerTy() {
		t.Fatal("type attribute did not round-trip")
	}

	s.SetLvalue(5, true)
	if !s.IsLvalue(5) {
		t.Fatal("lvalue attribute did not round-trip")
	}
	if s.IsLvalue(6) {
		t.Fatal("unset lvalue should default to false")
	}

	s.SetAddr(5, "%0")
	if got, ok := s.Addr(5); !ok || got != "%0" {
		t.Fatal("addr attribute did not round-trip")
	}

	s.SetOffset(5, "%1")
	if got, ok := s.Offset(5); !ok || got != "%1" {
		t.Fatal("offset attribute did not round-trip")
	}

	var list code.List
	list.Emit(code.ADD, "%2", "%0", "%1")
	s.SetCode(5, list)
	if got, ok := s.Code(5); !ok || len(got) != 1 {
		t.Fatal("code attribute did not round-trip")
	}
}

func TestMissingAttributesAreLegal(t *testing.T) {
	s := New()
	if _, ok := s.Type(99); ok {
		t.Fatal("unset type should report ok=false")
	}
	if _, ok := s.Addr(99); ok {
		t.Fatal("unset addr should report ok=false")
	}
}
