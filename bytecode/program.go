package bytecode

import (
	"bytes"

	"github.com/julio4/light-evm/vm"
)

// Program builds code one instruction at a time.
//
//	code := NewProgram().Push(5).Push(6).Add().Stop().Bytes()
type Program struct {
	buf bytes.Buffer
}

func NewProgram() *Program {
	return &Program{}
}

// Op appends a bare opcode, operands are appended with B.
func (p *Program) Op(op vm.Opcode) *Program {
	p.buf.WriteByte(byte(op))
	return p
}

// B appends raw bytes.
func (p *Program) B(b ...byte) *Program {
	p.buf.Write(b)
	return p
}

func (p *Program) Push(v byte) *Program {
	return p.Op(vm.OpPush1).B(v)
}

func (p *Program) Add() *Program {
	return p.Op(vm.OpAdd)
}

func (p *Program) Mul() *Program {
	return p.Op(vm.OpMul)
}

func (p *Program) Stop() *Program {
	return p.Op(vm.OpStop)
}

func (p *Program) Bytes() []byte {
	out := make([]byte, p.buf.Len())
	copy(out, p.buf.Bytes())
	return out
}

func (p *Program) Hex() string {
	return ToHex(p.buf.Bytes())
}
