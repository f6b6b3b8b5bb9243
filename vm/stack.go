package vm

import (
	"fmt"
)

// Stack is the operand stack. A zero depth means no bound.
type Stack struct {
	data  []uint32
	depth int
}

type StackOpt func(*Stack) *Stack

func MaxStack(max int) StackOpt {
	return func(s *Stack) *Stack {
		s.depth = max
		return s
	}
}

func NewStack(opts ...StackOpt) *Stack {
	s := &Stack{
		data: make([]uint32, 0, 16),
	}
	for _, opt := range opts {
		s = opt(s)
	}
	return s
}

func (s *Stack) Push(v uint32) error {
	if s.depth > 0 && len(s.data) == s.depth {
		return fmt.Errorf("push %d: %w (depth %d)", v, ErrStackOverflow, s.depth)
	}
	s.data = append(s.data, v)
	return nil
}

func (s *Stack) Pop() (uint32, error) {
	if s.Empty() {
		return 0, ErrStackUnderflow
	}
	// last element is the top
	top := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]

	return top, nil
}

// Require fails with ErrStackUnderflow unless at least n values are present.
func (s *Stack) Require(n int) error {
	if len(s.data) < n {
		return fmt.Errorf("need %d values, have %d: %w", n, len(s.data), ErrStackUnderflow)
	}
	return nil
}

func (s *Stack) Empty() bool {
	return len(s.data) == 0
}

func (s *Stack) Len() int {
	return len(s.data)
}

func (s *Stack) Peek() (uint32, error) {
	return s.read(s.Len() - 1)
}

// Values returns a copy of the stack, bottom first.
func (s *Stack) Values() []uint32 {
	out := make([]uint32, len(s.data))
	copy(out, s.data)
	return out
}

func (s *Stack) read(pos int) (uint32, error) {
	if pos >= s.Len() || pos < 0 {
		return 0, fmt.Errorf("read out of range len %d, pos %d: %w", s.Len(), pos, ErrStackUnderflow)
	}
	return s.data[pos], nil
}
