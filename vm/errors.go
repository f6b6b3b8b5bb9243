package vm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOpcode    = errors.New("invalid opcode")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrTruncatedOperand = errors.New("operand past end of code")
	ErrStepLimit        = errors.New("step limit reached")

	// ErrHalt is returned by Step when a STOP executes. It is the clean end
	// of a run, not a fault. Run never returns it.
	ErrHalt = errors.New("halt")
)

// ExecError is a fault raised while executing the instruction at PC.
type ExecError struct {
	PC  int
	Op  Opcode
	Err error

	state Snapshot
}

func newExecError(s *State, op Opcode, err error) *ExecError {
	return &ExecError{
		PC:    s.pc,
		Op:    op,
		Err:   err,
		state: s.Snapshot(),
	}
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s at pc %d: %s", e.Op, e.PC, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// State is the machine state at the point of failure.
func (e *ExecError) State() Snapshot {
	return e.state
}
