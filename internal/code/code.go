// Package code implements the InstructionModel (spec.md §4.8): a flat
// three-address instruction list with a fixed opcode set, plus the
// per-Subroutine temp and label counters CodeGenPass uses to name
// intermediate values.
//
// Grounded on the builder shape of ir/lir's Function/Param/Value types
// (hhramberg-go-vslc) — a growable instruction slice owned by a function
// record — simplified from lir's SSA/register-allocation model to the
// flat stack-machine three-address form spec.md §4.8 specifies, and on
// util/label.go's per-kind name-prefix idiom (While/If/...), rebuilt as
// plain counter fields instead of a channel-served label server so
// CodeGenPass stays single-threaded (spec.md §5, REDESIGN FLAG).
package code

import (
	"fmt"
	"strings"
)

// Opcode is one of the fixed three-address instruction operators
// spec.md §4.8 enumerates.
type Opcode int

const (
	ADD Opcode = iota
	SUB
	MUL
	DIV
	FADD
	FSUB
	FMUL
	FDIV
	FLOAT // integer-to-float coercion
	AND
	OR
	NOT
	EQ
	LT
	LE
	LOAD   // copy: dst <- src
	ILOAD  // load integer value
	FLOAD  // load float value
	CHLOAD // load a character literal immediate
	LOADX  // indexed load: dst <- base[index]
	XLOAD  // indexed store: base[index] <- src
	ALOAD  // load the base address of an array
	READI
	READF
	READC
	WRITEI
	WRITEF
	WRITEC
	WRITELN
	LABEL
	UJUMP // unconditional jump
	FJUMP // jump if false
	CALL
	RETURN
	PUSH
	POP
)

var opcodeNames = [...]string{
	"ADD", "SUB", "MUL", "DIV",
	"FADD", "FSUB", "FMUL", "FDIV",
	"FLOAT",
	"AND", "OR", "NOT",
	"EQ", "LT", "LE",
	"LOAD", "ILOAD", "FLOAD", "CHLOAD",
	"LOADX", "XLOAD", "ALOAD",
	"READI", "READF", "READC",
	"WRITEI", "WRITEF", "WRITEC", "WRITELN",
	"LABEL", "UJUMP", "FJUMP", "CALL", "RETURN",
	"PUSH", "POP",
}

func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return "?"
	}
	return opcodeNames[op]
}

// Instruction is a single three-address instruction. Args are textual
// operands (temp names, labels, literals) rather than a typed operand
// union, mirroring the assembler-text shape the teacher's backend
// emits directly to an io.Writer.
type Instruction struct {
	Op   Opcode
	Args []string
}

// String renders inst in the same "OP arg arg" text form the backend
// writes to the output assembly file.
func (inst Instruction) String() string {
	s := inst.Op.String()
	for _, a := range inst.Args {
		s += " " + a
	}
	return s
}

// List is a growable sequence of instructions.
type List []Instruction

// Emit appends a new instruction built from op and args.
func (l *List) Emit(op Opcode, args ...string) {
	*l = append(*l, Instruction{Op: op, Args: args})
}

// Concat appends other's instructions to l in place, matching the
// teacher's InstructionList.Concat-style splicing used when lowering
// compound statements (if/while bodies) into their enclosing list.
func (l *List) Concat(other List) {
	*l = append(*l, other...)
}

// Subroutine is one function's generated code plus its private temp
// and label counters. Counters are per-Subroutine, not global, so
// concurrent code generation of independent functions would not need
// to synchronize if it were ever reintroduced — though CodeGenPass
// itself runs these sequentially (spec.md §5).
type Subroutine struct {
	Name string
	// Params is the ordered parameter name list (spec.md §4.4); a
	// non-void function's hidden "_result" slot is prepended here by
	// CodeGenPass.
	Params []string
	// LocalOrder and LocalSizes together form the local-variable table
	// "name -> byte size" spec.md §4.4 specifies; LocalOrder fixes the
	// declaration order the listing is rendered in.
	LocalOrder []string
	LocalSizes map[string]int
	Body       List

	nextTemp  int
	nextLabel map[string]int
}

// NewSubroutine returns an empty Subroutine named name.
func NewSubroutine(name string) *Subroutine {
	return &Subroutine{Name: name, LocalSizes: make(map[string]int), nextLabel: make(map[string]int)}
}

// AddParam appends name to the subroutine's parameter list.
func (s *Subroutine) AddParam(name string) {
	s.Params = append(s.Params, name)
}

// AddLocal records a local variable of the given byte size, in
// declaration order.
func (s *Subroutine) AddLocal(name string, size int) {
	if _, ok := s.LocalSizes[name]; ok {
		return
	}
	s.LocalOrder = append(s.LocalOrder, name)
	s.LocalSizes[name] = size
}

// NewTemp returns the next "%N" temporary name for this subroutine,
// starting at %0 (spec.md §3).
func (s *Subroutine) NewTemp() string {
	t := fmt.Sprintf("%%%d", s.nextTemp)
	s.nextTemp++
	return t
}

// NewLabel returns the next "prefix_N" label name for this subroutine,
// starting at prefix_0, where prefix identifies the construct that
// needed a label (e.g. "if", "while", "and", "or").
func (s *Subroutine) NewLabel(prefix string) string {
	n := s.nextLabel[prefix]
	s.nextLabel[prefix]++
	return fmt.Sprintf("%s_%d", prefix, n)
}

// String renders the subroutine in the listing form spec.md §6
// specifies: parameter list, then local declarations "name : size",
// then the instruction body.
func (s *Subroutine) String() string {
	out := fmt.Sprintf("func %s(%s)\n", s.Name, strings.Join(s.Params, ", "))
	for _, name := range s.LocalOrder {
		out += fmt.Sprintf("  %s : %d\n", name, s.LocalSizes[name])
	}
	for _, inst := range s.Body {
		out += "  " + inst.String() + "\n"
	}
	return out
}
