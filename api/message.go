package api

import "github.com/julio4/light-evm/vm"

type RunRequest struct {
	Bytecode string `json:"bytecode"`
}

type RunResponse struct {
	Stack []uint32 `json:"stack"`
	PC    int      `json:"pc"`
	Steps uint64   `json:"steps"`
}

type ErrorResponse struct {
	Error string `json:"error"`

	// State is set when execution faulted.
	State *vm.Snapshot `json:"state,omitempty"`
}

type OpcodeInfo struct {
	Opcode string `json:"opcode"`
	Name   string `json:"name"`
	Size   int    `json:"size"`
}
