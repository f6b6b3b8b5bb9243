package vm

// State is the mutable machine state. Instructions get it for the duration of
// a single Execute call and must not keep it.
type State struct {
	pc     int
	stack  *Stack
	memory []byte
	code   []byte
}

func NewState(code []byte, opts ...StackOpt) *State {
	// own the code so callers can't rewrite it under us
	c := make([]byte, len(code))
	copy(c, code)

	return &State{
		pc:     0,
		stack:  NewStack(opts...),
		memory: []byte{},
		code:   c,
	}
}

func (s *State) PC() int {
	return s.pc
}

// Advance moves the program counter n bytes forward.
func (s *State) Advance(n int) {
	s.pc += n
}

func (s *State) Push(v uint32) error {
	return s.stack.Push(v)
}

func (s *State) Pop() (uint32, error) {
	return s.stack.Pop()
}

func (s *State) Stack() *Stack {
	return s.stack
}

// Operand returns the byte at pc+offset.
func (s *State) Operand(offset int) (byte, error) {
	pos := s.pc + offset
	if pos < 0 || pos >= len(s.code) {
		return 0, ErrTruncatedOperand
	}
	return s.code[pos], nil
}

// Snapshot is a detached copy of the machine state.
type Snapshot struct {
	PC     int      `json:"pc"`
	Stack  []uint32 `json:"stack"`
	Memory []byte   `json:"memory"`
	Code   []byte   `json:"code"`
}

func (s *State) Snapshot() Snapshot {
	mem := make([]byte, len(s.memory))
	copy(mem, s.memory)
	code := make([]byte, len(s.code))
	copy(code, s.code)

	return Snapshot{
		PC:     s.pc,
		Stack:  s.stack.Values(),
		Memory: mem,
		Code:   code,
	}
}
