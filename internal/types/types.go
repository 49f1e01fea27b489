// Package types implements the TypeRegistry (spec.md §4.1): interning of
// primitive, array, function, void and error types, and the copyable/
// comparable relations that govern assignment, parameter passing, return
// and relational operators.
//
// Grounded on ir/symtab.go's DataInteger/DataFloat constants and
// ir/validate.go's lutExp/lutAssign lookup tables in the teacher
// (hhramberg-go-vslc), generalized from two primitives to ASL's four.
package types

import "fmt"

// ID identifies an interned type. IDs are small integers; equality on ID
// implies structural equality (spec.md §3 invariant).
type ID int

// kind tags the structural category of a registry entry.
type kind int

const (
	kPrimitive kind = iota
	kVoid
	kError
	kArray
	kFunction
)

// Primitive data types.
const (
	Integer = iota
	Float
	Boolean
	Character
)

var primitiveNames = [...]string{"integer", "float", "boolean", "character"}

type entry struct {
	k        kind
	prim     int   // valid when k == kPrimitive
	size     int   // valid when k == kArray: element count
	elem     ID    // valid when k == kArray: element type
	params   []ID  // valid when k == kFunction
	ret      ID    // valid when k == kFunction: primitive or void
}

// Registry interns and answers structural queries about types. The zero
// value is not usable; construct with NewRegistry.
type Registry struct {
	entries []entry
	// arrayIndex and funcIndex dedupe structurally identical array/
	// function types so equal types share one ID, per spec.md §3's
	// "equality on ids implies structural equality" invariant.
	arrayIndex map[arrayKey]ID
	funcIndex  map[string]ID

	integerID   ID
	floatID     ID
	booleanID   ID
	characterID ID
	voidID      ID
	errorID     ID
}

type arrayKey struct {
	size int
	elem ID
}

// NewRegistry constructs a Registry with the four primitives, void and
// error already interned.
func NewRegistry() *Registry {
	r := &Registry{
		arrayIndex: make(map[arrayKey]ID),
		funcIndex:  make(map[string]ID),
	}
	r.integerID = r.intern(entry{k: kPrimitive, prim: Integer})
	r.floatID = r.intern(entry{k: kPrimitive, prim: Float})
	r.booleanID = r.intern(entry{k: kPrimitive, prim: Boolean})
	r.characterID = r.intern(entry{k: kPrimitive, prim: Character})
	r.voidID = r.intern(entry{k: kVoid})
	r.errorID = r.intern(entry{k: kError})
	return r
}

func (r *Registry) intern(e entry) ID {
	r.entries = append(r.entries, e)
	return ID(len(r.entries) - 1)
}

func (r *Registry) get(t ID) entry {
	return r.entries[int(t)]
}

// IntegerTy, FloatTy, BooleanTy, CharacterTy, VoidTy and ErrorTy return the
// registry's singleton ids for the corresponding type.
func (r *Registry) IntegerTy() ID   { return r.integerID }
func (r *Registry) FloatTy() ID     { return r.floatID }
func (r *Registry) BooleanTy() ID   { return r.booleanID }
func (r *Registry) CharacterTy() ID { return r.characterID }
func (r *Registry) VoidTy() ID      { return r.voidID }
func (r *Registry) ErrorTy() ID     { return r.errorID }

// CreateArray interns array(size, elem), deduplicating on (size, elem).
// elem must be a primitive type id (spec.md §3 invariant: arrays nest
// only over primitives).
func (r *Registry) CreateArray(size int, elem ID) ID {
	key := arrayKey{size: size, elem: elem}
	if id, ok := r.arrayIndex[key]; ok {
		return id
	}
	id := r.intern(entry{k: kArray, size: size, elem: elem})
	r.arrayIndex[key] = id
	return id
}

// CreateFunction interns function(params, ret), deduplicating on the
// parameter list and return type.
func (r *Registry) CreateFunction(params []ID, ret ID) ID {
	key := funcKey(params, ret)
	if id, ok := r.funcIndex[key]; ok {
		return id
	}
	cp := make([]ID, len(params))
	copy(cp, params)
	id := r.intern(entry{k: kFunction, params: cp, ret: ret})
	r.funcIndex[key] = id
	return id
}

func funcKey(params []ID, ret ID) string {
	s := fmt.Sprintf("%d:", ret)
	for _, p := range params {
		s += fmt.Sprintf("%d,", p)
	}
	return s
}

// --- predicates ---

func (r *Registry) IsInteger(t ID) bool   { e := r.get(t); return e.k == kPrimitive && e.prim == Integer }
func (r *Registry) IsFloat(t ID) bool     { e := r.get(t); return e.k == kPrimitive && e.prim == Float }
func (r *Registry) IsBoolean(t ID) bool   { e := r.get(t); return e.k == kPrimitive && e.prim == Boolean }
func (r *Registry) IsCharacter(t ID) bool { e := r.get(t); return e.k == kPrimitive && e.prim == Character }
func (r *Registry) IsNumeric(t ID) bool   { return r.IsInteger(t) || r.IsFloat(t) }
func (r *Registry) IsPrimitive(t ID) bool { return r.get(t).k == kPrimitive }
func (r *Registry) IsArray(t ID) bool     { return r.get(t).k == kArray }
func (r *Registry) IsFunction(t ID) bool  { return r.get(t).k == kFunction }
func (r *Registry) IsVoid(t ID) bool      { return r.get(t).k == kVoid }
func (r *Registry) IsError(t ID) bool     { return r.get(t).k == kError }

// --- array accessors ---

// ArraySize returns the declared element count of array type t.
func (r *Registry) ArraySize(t ID) int { return r.get(t).size }

// ArrayElem returns the element type of array type t.
func (r *Registry) ArrayElem(t ID) ID { return r.get(t).elem }

// --- function accessors ---

// ParamCount returns the number of parameters of function type t.
func (r *Registry) ParamCount(t ID) int { return len(r.get(t).params) }

// ParamType returns the type of the i'th parameter of function type t.
func (r *Registry) ParamType(t ID, i int) ID { return r.get(t).params[i] }

// ReturnType returns the return type of function type t.
func (r *Registry) ReturnType(t ID) ID { return r.get(t).ret }

// SizeOf returns the storage size of t in primitive-sized units: 1 for
// any primitive, size*SizeOf(elem) for an array.
func (r *Registry) SizeOf(t ID) int {
	e := r.get(t)
	if e.k == kArray {
		return e.size * r.SizeOf(e.elem)
	}
	return 1
}

// Copyable reports whether a value of type src may be copied into a
// location of type dst: assignment, parameter passing and return all
// share this relation (spec.md §4.1). error on either side is
// vacuously copyable, so one diagnostic does not cascade into others.
func (r *Registry) Copyable(dst, src ID) bool {
	if r.IsError(dst) || r.IsError(src) {
		return true
	}
	if dst == src && r.IsPrimitive(dst) {
		return true
	}
	if r.IsFloat(dst) && r.IsInteger(src) {
		return true
	}
	if r.IsArray(dst) && r.IsArray(src) {
		de, se := r.get(dst), r.get(src)
		return de.size == se.size && de.elem == se.elem
	}
	return false
}

// Comparable reports whether op is defined between a and b: for ==/!=
// both operands must be the same primitive or both numeric; for
// </<=/>/>= both must be numeric. Arrays, functions and void are never
// comparable. error on either side is vacuously comparable.
func (r *Registry) Comparable(a, b ID, op string) bool {
	if r.IsError(a) || r.IsError(b) {
		return true
	}
	switch op {
	case "==", "!=":
		if r.IsNumeric(a) && r.IsNumeric(b) {
			return true
		}
		return a == b && r.IsPrimitive(a)
	case "<", "<=", ">", ">=":
		return r.IsNumeric(a) && r.IsNumeric(b)
	default:
		return false
	}
}

// Name returns a print friendly name for type t, used in diagnostics.
func (r *Registry) Name(t ID) string {
	e := r.get(t)
	switch e.k {
	case kPrimitive:
		return primitiveNames[e.prim]
	case kVoid:
		return "void"
	case kError:
		return "error"
	case kArray:
		return fmt.Sprintf("array[%d] of %s", e.size, r.Name(e.elem))
	case kFunction:
		return "function"
	default:
		return "?"
	}
}
