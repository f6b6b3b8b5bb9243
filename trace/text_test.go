package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/julio4/light-evm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_Before(t *testing.T) {
	tests := []struct {
		name string
		snap vm.Snapshot
		want string
	}{
		{
			name: "marker at start",
			snap: vm.Snapshot{PC: 0, Code: []byte{0x60, 0x05, 0x00}},
			want: separator + "\nBytecode:\n" +
				"60 05 00 \n" +
				"↑\n",
		},
		{
			name: "marker under pc",
			snap: vm.Snapshot{PC: 2, Code: []byte{0x60, 0x05, 0x00}},
			want: separator + "\nBytecode:\n" +
				"60 05 00 \n" +
				"      ↑\n",
		},
		{
			name: "second row",
			snap: vm.Snapshot{PC: 17, Code: bytes.Repeat([]byte{0x01}, 18)},
			want: separator + "\nBytecode:\n" +
				strings.Repeat("01 ", 16) + "\n" +
				"01 01 \n" +
				"   ↑\n",
		},
		{
			name: "empty code",
			snap: vm.Snapshot{},
			want: separator + "\nBytecode:\n\n↑\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			NewText(buf).Before(tt.snap)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestText_After(t *testing.T) {
	buf := &bytes.Buffer{}
	tr := NewText(buf)

	tr.After(vm.Snapshot{Stack: []uint32{5, 0x16}})
	assert.Equal(t, "Stack:\n╭────╮\n│ 16 │\n├────┤\n│ 05 │\n├────┤\n", buf.String())

	buf.Reset()
	tr.After(vm.Snapshot{})
	assert.Equal(t, "Stack:\n╭────╮\n│    │\n├────┤\n", buf.String())
}

func TestText_WithVM(t *testing.T) {
	buf := &bytes.Buffer{}
	code := []byte{0x60, 0x05, 0x60, 0x06, 0x01, 0x00}
	m := vm.NewVM(code, vm.TraceOpt(NewText(buf)))
	require.NoError(t, m.Run())

	out := buf.String()
	// one bytecode block per instruction, one stack block per non-stop
	assert.Equal(t, 4, strings.Count(out, "Bytecode:"))
	assert.Equal(t, 3, strings.Count(out, "Stack:"))
	assert.Contains(t, out, "│ 0b │")
}
