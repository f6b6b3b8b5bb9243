package vm

import (
	"fmt"
	"strings"
)

// Line is one disassembled instruction.
type Line struct {
	Offset     int
	Op         Opcode
	Operand    byte
	HasOperand bool
}

func (l Line) String() string {
	if l.HasOperand {
		return fmt.Sprintf("%04x: %s 0x%02x", l.Offset, l.Op, l.Operand)
	}
	return fmt.Sprintf("%04x: %s", l.Offset, l.Op)
}

// Disassemble decodes code front to back. It returns the lines decoded so far
// together with an error at the first invalid opcode or truncated operand.
func Disassemble(code []byte) ([]Line, error) {
	var lines []Line
	for pc := 0; pc < len(code); {
		inst, err := Decode(code[pc])
		if err != nil {
			return lines, fmt.Errorf("offset %d: %w", pc, err)
		}
		l := Line{Offset: pc, Op: inst.Opcode()}
		if inst.Size() > 1 {
			if pc+1 >= len(code) {
				return lines, fmt.Errorf("offset %d: %s: %w", pc, inst, ErrTruncatedOperand)
			}
			l.Operand = code[pc+1]
			l.HasOperand = true
		}
		lines = append(lines, l)
		pc += inst.Size()
	}
	return lines, nil
}

// Format renders lines one per row.
func Format(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
