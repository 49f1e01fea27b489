// Package decor implements the DecorationStore (spec.md §9 design note):
// per-node attribute side tables keyed by ast.Node.ID rather than by tree
// pointer. Three passes annotate the same tree with progressively more
// information (scope membership, resolved type, l-value-ness, storage
// address/offset, and finally generated code) without mutating ast.Node
// or requiring every node variant to carry every attribute.
//
// Grounded on the attribute-getter/setter shape of the C++ TreeDecoration
// class referenced throughout original_source/asl/*.cpp (every listener
// method calls Decorations.put*/get* keyed off the parse tree context),
// adapted to Go's lack of a tree-node base class by keying on the
// integer id ast.New assigns each Node.
package decor

import (
	"asl/internal/code"
	"asl/internal/symtab"
	"asl/internal/types"
)

// Store holds all decoration side tables for a single compilation unit,
// the six keyed maps spec.md §4.3 names: scope, type, is_lvalue, addr,
// offset and code.
type Store struct {
	scope    map[int]symtab.ScopeID
	typ      map[int]types.ID
	isLvalue map[int]bool
	addr     map[int]string
	offset   map[int]string
	cod      map[int]code.List
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		scope:    make(map[int]symtab.ScopeID),
		typ:      make(map[int]types.ID),
		isLvalue: make(map[int]bool),
		addr:     make(map[int]string),
		offset:   make(map[int]string),
		cod:      make(map[int]code.List),
	}
}

// SetScope records which scope a Function or block-introducing node
// owns, so later passes can PushThisScope it again (spec.md §5).
func (s *Store) SetScope(nodeID int, id symtab.ScopeID) { s.scope[nodeID] = id }

// Scope returns the scope recorded for nodeID, and whether one was set.
func (s *Store) Scope(nodeID int) (symtab.ScopeID, bool) {
	id, ok := s.scope[nodeID]
	return id, ok
}

// SetType records the resolved type of an expression or declaration
// node. SymbolPass writes it for declaration, type-name and function
// nodes, TypeCheckPass for expressions; CodeGenPass only reads.
func (s *Store) SetType(nodeID int, t types.ID) { s.typ[nodeID] = t }

// Type returns the type recorded for nodeID, and whether one was set.
func (s *Store) Type(nodeID int) (types.ID, bool) {
	t, ok := s.typ[nodeID]
	return t, ok
}

// SetLvalue records whether an expression node denotes an assignable
// storage location (spec.md §7 non_referenceable_left/non_referenceable_
// expression diagnostics depend on this).
func (s *Store) SetLvalue(nodeID int, v bool) { s.isLvalue[nodeID] = v }

// IsLvalue reports whether nodeID was recorded as an l-value. Nodes
// never visited default to false.
func (s *Store) IsLvalue(nodeID int) bool { return s.isLvalue[nodeID] }

// SetAddr records where CodeGenPass left an expression node's value: a
// temporary, or the variable's own name for an identifier reference.
func (s *Store) SetAddr(nodeID int, addr string) { s.addr[nodeID] = addr }

// Addr returns the address recorded for nodeID, and whether one was set.
func (s *Store) Addr(nodeID int) (string, bool) {
	a, ok := s.addr[nodeID]
	return a, ok
}

// SetOffset records the temp naming an array index, present iff the
// node's addr refers to an array element rather than a whole variable
// (spec.md §3).
func (s *Store) SetOffset(nodeID int, off string) { s.offset[nodeID] = off }

// Offset returns the offset recorded for nodeID, and whether one was set.
func (s *Store) Offset(nodeID int) (string, bool) {
	o, ok := s.offset[nodeID]
	return o, ok
}

// SetCode records the instructions CodeGenPass emitted while lowering
// this node alone: for a leaf expression, the handful of instructions
// materializing its value; for a statement or compound expression, the
// full span contributed by it and everything beneath it.
func (s *Store) SetCode(nodeID int, c code.List) { s.cod[nodeID] = c }

// Code returns the instruction list recorded for nodeID, and whether
// one was set.
func (s *Store) Code(nodeID int) (code.List, bool) {
	c, ok := s.cod[nodeID]
	return c, ok
}
