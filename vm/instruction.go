package vm

import (
	"fmt"
)

type Opcode byte

const (
	OpStop  Opcode = 0x00
	OpAdd   Opcode = 0x01
	OpMul   Opcode = 0x02
	OpPush1 Opcode = 0x60
)

// Instruction is one decoded opcode. The set is closed: only the types in
// this file implement it.
type Instruction interface {
	Opcode() Opcode
	// Size is the encoded width in bytes, opcode included.
	Size() int
	// Execute applies the instruction to s and advances its program counter.
	Execute(s *State) error
	String() string

	sealed()
}

type definition struct {
	name   string
	decode func() Instruction
}

// instructionSet drives decoding, naming and disassembly. Adding an opcode
// means adding a type below and one entry here.
var instructionSet = [256]*definition{
	OpStop:  {name: "STOP", decode: func() Instruction { return Halt{} }},
	OpAdd:   {name: "ADD", decode: func() Instruction { return Add{} }},
	OpMul:   {name: "MUL", decode: func() Instruction { return Multiply{} }},
	OpPush1: {name: "PUSH1", decode: func() Instruction { return PushImmediate{} }},
}

func (op Opcode) Valid() bool {
	return instructionSet[op] != nil
}

func (op Opcode) String() string {
	if d := instructionSet[op]; d != nil {
		return d.name
	}
	return fmt.Sprintf("INVALID(0x%02x)", byte(op))
}

// Decode maps an opcode byte to its instruction.
func Decode(b byte) (Instruction, error) {
	d := instructionSet[b]
	if d == nil {
		return nil, fmt.Errorf("0x%02x: %w", b, ErrInvalidOpcode)
	}
	return d.decode(), nil
}

// Opcodes lists the supported opcodes in ascending order.
func Opcodes() []Opcode {
	var out []Opcode
	for i, d := range instructionSet {
		if d != nil {
			out = append(out, Opcode(i))
		}
	}
	return out
}

// Halt stops the machine. [...] -> [...]
type Halt struct{}

func (Halt) Opcode() Opcode { return OpStop }
func (Halt) Size() int      { return 1 }
func (Halt) String() string { return OpStop.String() }
func (Halt) sealed()        {}

func (Halt) Execute(*State) error {
	return ErrHalt
}

// Add is wrapping 32-bit addition. [..., b, a] -> [..., a+b]
type Add struct{}

func (Add) Opcode() Opcode { return OpAdd }
func (Add) Size() int      { return 1 }
func (Add) String() string { return OpAdd.String() }
func (Add) sealed()        {}

func (Add) Execute(s *State) error {
	return binary(s, func(a, b uint32) uint32 { return a + b })
}

// Multiply is wrapping 32-bit multiplication. [..., b, a] -> [..., a*b]
type Multiply struct{}

func (Multiply) Opcode() Opcode { return OpMul }
func (Multiply) Size() int      { return 1 }
func (Multiply) String() string { return OpMul.String() }
func (Multiply) sealed()        {}

func (Multiply) Execute(s *State) error {
	return binary(s, func(a, b uint32) uint32 { return a * b })
}

// PushImmediate pushes the byte following the opcode. [...] -> [..., u8]
type PushImmediate struct{}

func (PushImmediate) Opcode() Opcode { return OpPush1 }
func (PushImmediate) Size() int      { return 2 }
func (PushImmediate) String() string { return OpPush1.String() }
func (PushImmediate) sealed()        {}

func (p PushImmediate) Execute(s *State) error {
	b, err := s.Operand(1)
	if err != nil {
		return err
	}
	if err := s.Push(uint32(b)); err != nil {
		return err
	}
	s.Advance(p.Size())
	return nil
}

// binary pops a (top) then b and pushes f(a, b). a is the right-hand operand.
// The operand count is checked first so a failure leaves the stack untouched.
func binary(s *State, f func(a, b uint32) uint32) error {
	if err := s.stack.Require(2); err != nil {
		return err
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	if err := s.Push(f(a, b)); err != nil {
		return err
	}
	s.Advance(1)
	return nil
}
