// Package trace renders machine state for people watching a run.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/julio4/light-evm/vm"
)

const (
	bytesPerRow = 16
	separator   = "┅┅┅┅┅┅┅┅┅┅"
)

// Text writes the bytecode with a marker under the program counter before
// each instruction, and the operand stack after it.
type Text struct {
	w io.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) Before(s vm.Snapshot) {
	var sb strings.Builder
	sb.WriteString(separator + "\n")
	sb.WriteString("Bytecode:\n")

	rows := (len(s.Code) + bytesPerRow - 1) / bytesPerRow
	if rows == 0 {
		rows = 1
	}
	markerRow := s.PC / bytesPerRow
	if markerRow >= rows {
		markerRow = rows - 1
	}

	for row := 0; row < rows; row++ {
		start := row * bytesPerRow
		end := start + bytesPerRow
		if end > len(s.Code) {
			end = len(s.Code)
		}
		for _, b := range s.Code[start:end] {
			fmt.Fprintf(&sb, "%02x ", b)
		}
		sb.WriteByte('\n')

		if row == markerRow {
			sb.WriteString(strings.Repeat(" ", (s.PC-start)*3))
			sb.WriteString("↑\n")
		}
	}

	io.WriteString(t.w, sb.String())
}

func (t *Text) After(s vm.Snapshot) {
	var sb strings.Builder
	sb.WriteString("Stack:\n")
	sb.WriteString("╭────╮\n")
	if len(s.Stack) == 0 {
		sb.WriteString("│    │\n")
		sb.WriteString("├────┤\n")
	}
	for i := len(s.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "│ %02x │\n", s.Stack[i])
		sb.WriteString("├────┤\n")
	}

	io.WriteString(t.w, sb.String())
}
