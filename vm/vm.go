package vm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Tracer observes the machine around each executed instruction.
type Tracer interface {
	// Before is called with the state about to execute.
	Before(Snapshot)
	// After is called with the state the instruction left behind.
	After(Snapshot)
}

// Confirmer paces single-step execution. Confirm blocks until the next
// instruction may run; an error aborts the step.
type Confirmer interface {
	Confirm() error
}

type ConfirmFunc func() error

func (f ConfirmFunc) Confirm() error { return f() }

type VM struct {
	state *State

	tracer    Tracer
	confirmer Confirmer

	maxStack int
	maxSteps uint64
	steps    uint64

	logger *zap.Logger
}

type VMOpt func(*VM) *VM

func LoggerOpt(l *zap.Logger) VMOpt {
	return func(vm *VM) *VM {
		vm.logger = l
		return vm
	}
}

// TraceOpt enables tracing through t.
func TraceOpt(t Tracer) VMOpt {
	return func(vm *VM) *VM {
		vm.tracer = t
		return vm
	}
}

// StepOpt enables single-step execution paced by c.
func StepOpt(c Confirmer) VMOpt {
	return func(vm *VM) *VM {
		vm.confirmer = c
		return vm
	}
}

// MaxStackOpt bounds the operand stack depth. Zero means unbounded.
func MaxStackOpt(depth int) VMOpt {
	return func(vm *VM) *VM {
		vm.maxStack = depth
		return vm
	}
}

// MaxStepsOpt bounds the number of instructions Run executes. Zero means
// unbounded.
func MaxStepsOpt(n uint64) VMOpt {
	return func(vm *VM) *VM {
		vm.maxSteps = n
		return vm
	}
}

// NewVM accepts any code, including empty or malformed code. Problems surface
// when the code executes.
func NewVM(code []byte, opts ...VMOpt) *VM {
	vm := &VM{
		logger: zap.L(),
	}

	for _, opt := range opts {
		vm = opt(vm)
	}

	vm.logger = vm.logger.Named("vm")
	vm.state = NewState(code, MaxStack(vm.maxStack))

	return vm
}

func (vm *VM) Tracing() bool  { return vm.tracer != nil }
func (vm *VM) Stepping() bool { return vm.confirmer != nil }

func (vm *VM) PC() int { return vm.state.pc }

// Steps is the number of instructions executed so far.
func (vm *VM) Steps() uint64 { return vm.steps }

// Stack returns the operand stack, bottom first.
func (vm *VM) Stack() []uint32 { return vm.state.stack.Values() }

func (vm *VM) Snapshot() Snapshot { return vm.state.Snapshot() }

func (vm *VM) Push(v uint32) error {
	return vm.state.Push(v)
}

func (vm *VM) Pop() (uint32, error) {
	return vm.state.Pop()
}

// Decode returns the instruction at the program counter without executing it.
func (vm *VM) Decode() (Instruction, error) {
	pc, code := vm.state.pc, vm.state.code
	if pc < 0 || pc >= len(code) {
		return nil, fmt.Errorf("pc %d past end of code (len %d): %w", pc, len(code), ErrInvalidOpcode)
	}
	inst, err := Decode(code[pc])
	if err != nil {
		return nil, fmt.Errorf("pc %d: %w", pc, err)
	}
	return inst, nil
}

// Step decodes and executes one instruction. It returns ErrHalt when the
// instruction is a STOP.
func (vm *VM) Step() error {
	inst, err := vm.Decode()
	if err != nil {
		return err
	}

	if vm.confirmer != nil {
		if err := vm.confirmer.Confirm(); err != nil {
			return fmt.Errorf("step at pc %d: %w", vm.state.pc, err)
		}
	}

	if vm.tracer != nil {
		vm.tracer.Before(vm.state.Snapshot())
	}

	pc := vm.state.pc
	err = inst.Execute(vm.state)
	if errors.Is(err, ErrHalt) {
		vm.steps++
		vm.logger.Debug("halt",
			zap.Int("pc", pc),
			zap.Uint64("steps", vm.steps),
		)
		return ErrHalt
	}
	if err != nil {
		vm.logger.Debug("fault",
			zap.Int("pc", pc),
			zap.Stringer("op", inst.Opcode()),
			zap.Error(err),
		)
		return newExecError(vm.state, inst.Opcode(), err)
	}
	vm.steps++

	vm.logger.Debug("exec",
		zap.Int("pc", pc),
		zap.Stringer("op", inst.Opcode()),
		zap.Uint32s("stack", vm.state.stack.Values()),
	)

	if vm.tracer != nil {
		vm.tracer.After(vm.state.Snapshot())
	}
	return nil
}

// Run steps until a STOP, returning nil, or until the first fault, returning
// it. State is left as it was at the fault. Without MaxStepsOpt code that
// never halts or faults runs forever.
func (vm *VM) Run() error {
	for {
		if vm.maxSteps > 0 && vm.steps >= vm.maxSteps {
			return fmt.Errorf("vm run: %d steps at pc %d: %w", vm.steps, vm.state.pc, ErrStepLimit)
		}

		err := vm.Step()
		if errors.Is(err, ErrHalt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("vm run: %w", err)
		}
	}
}
