package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julio4/light-evm/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioOne = "0x600560060160020200"

type countingConfirmer struct {
	calls  int
	closed bool
}

func (c *countingConfirmer) Confirm() error {
	c.calls++
	return nil
}

func (c *countingConfirmer) Close() error {
	c.closed = true
	return nil
}

func testApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	a := &app{
		stdout:  stdout,
		stderr:  stderr,
		workDir: t.TempDir(),
		newConfirmer: func(string) (Confirmer, error) {
			return nil, errors.New("no terminal in tests")
		},
	}
	return a, stdout, stderr
}

func TestExecute_Run(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantOut    []string
		notOut     []string
		wantErrOut string
	}{
		{
			name:    "run subcommand",
			args:    []string{"run", "-b", scenarioOne, "--verbose=false", "--step=false"},
			wantOut: []string{"Execution completed successfully"},
			notOut:  []string{"Bytecode:"},
		},
		{
			name:    "root accepts bytecode",
			args:    []string{"-b", scenarioOne, "--verbose=false", "--step=false"},
			wantOut: []string{"Execution completed successfully"},
		},
		{
			name:    "whitespace in hex",
			args:    []string{"run", "-b", "0x6005600601600202 00", "--verbose=false", "--step=false"},
			wantOut: []string{"Execution completed successfully"},
		},
		{
			name:    "trace",
			args:    []string{"run", "-b", scenarioOne, "--step=false"},
			wantOut: []string{"Bytecode:", "Stack:", "│ 16 │", "Execution completed successfully"},
		},
		{
			name:       "underflow",
			args:       []string{"run", "-b", "0x0100", "--verbose=false", "--step=false"},
			wantCode:   1,
			notOut:     []string{"Execution completed successfully"},
			wantErrOut: "stack underflow",
		},
		{
			name:       "invalid opcode",
			args:       []string{"run", "-b", "ff", "--verbose=false", "--step=false"},
			wantCode:   1,
			wantErrOut: "invalid opcode",
		},
		{
			name:       "missing push operand",
			args:       []string{"run", "-b", "60", "--verbose=false", "--step=false"},
			wantCode:   1,
			wantErrOut: "operand past end of code",
		},
		{
			name:       "invalid hex fails before running",
			args:       []string{"run", "-b", "0x6", "--step=false"},
			wantCode:   1,
			notOut:     []string{"Bytecode:"},
			wantErrOut: "invalid bytecode",
		},
		{
			name:       "step limit",
			args:       []string{"run", "-b", "6001600160016001", "--verbose=false", "--step=false", "--max-steps", "2"},
			wantCode:   1,
			wantErrOut: "step limit",
		},
		{
			name:       "stack limit",
			args:       []string{"run", "-b", "6001600160016001", "--verbose=false", "--step=false", "--max-stack", "2"},
			wantCode:   1,
			wantErrOut: "stack overflow",
		},
		{
			name:       "bad log level",
			args:       []string{"run", "-b", scenarioOne, "--step=false", "--log-level", "loud"},
			wantCode:   1,
			wantErrOut: "log.level",
		},
		{
			name:       "run needs bytecode",
			args:       []string{"run", "--step=false"},
			wantCode:   1,
			wantErrOut: "bytecode",
		},
		{
			name:       "step needs a terminal",
			args:       []string{"run", "-b", scenarioOne},
			wantCode:   1,
			wantErrOut: "no terminal in tests",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, stdout, stderr := testApp(t)
			code := a.execute(tt.args)
			assert.Equal(t, tt.wantCode, code, stderr.String())
			for _, want := range tt.wantOut {
				assert.Contains(t, stdout.String(), want)
			}
			for _, not := range tt.notOut {
				assert.NotContains(t, stdout.String(), not)
			}
			if tt.wantErrOut != "" {
				assert.Contains(t, stderr.String(), "Error: ")
				assert.Contains(t, stderr.String(), tt.wantErrOut)
			}
		})
	}
}

func TestExecute_Step(t *testing.T) {
	a, stdout, _ := testApp(t)
	c := &countingConfirmer{}
	a.newConfirmer = func(key string) (Confirmer, error) {
		assert.Equal(t, "p", key)
		return c, nil
	}

	require.Equal(t, 0, a.execute([]string{"run", "-b", scenarioOne, "--verbose=false"}))
	assert.Equal(t, 6, c.calls)
	assert.True(t, c.closed)
	assert.Contains(t, stdout.String(), "Press 'p' to proceed to the next step.")
}

func TestExecute_ConfigFile(t *testing.T) {
	a, stdout, _ := testApp(t)
	body := "[vm]\ntrace = false\nstep = true\nstep_key = \"n\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(a.workDir, config.DefaultFile), []byte(body), 0o644))

	c := &countingConfirmer{}
	var gotKey string
	a.newConfirmer = func(key string) (Confirmer, error) {
		gotKey = key
		return c, nil
	}

	require.Equal(t, 0, a.execute([]string{"-b", scenarioOne}))
	assert.Equal(t, "n", gotKey)
	assert.Equal(t, 6, c.calls)
	assert.NotContains(t, stdout.String(), "Bytecode:")

	// flags win over the file
	stdout.Reset()
	c.calls = 0
	require.Equal(t, 0, a.execute([]string{"-b", scenarioOne, "--step=false", "--verbose=true"}))
	assert.Equal(t, 0, c.calls)
	assert.Contains(t, stdout.String(), "Bytecode:")
}

func TestExecute_ExplicitConfig(t *testing.T) {
	a, _, stderr := testApp(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[vm]\nstep = false\nmax_steps = 1\n"), 0o644))

	assert.Equal(t, 1, a.execute([]string{"--config", path, "run", "-b", scenarioOne}))
	assert.Contains(t, stderr.String(), "step limit")
}

func TestExecute_Disasm(t *testing.T) {
	a, stdout, stderr := testApp(t)
	require.Equal(t, 0, a.execute([]string{"disasm", "-b", scenarioOne}))
	assert.Equal(t, "0000: PUSH1 0x05\n"+
		"0002: PUSH1 0x06\n"+
		"0004: ADD\n"+
		"0005: PUSH1 0x02\n"+
		"0007: MUL\n"+
		"0008: STOP\n", stdout.String())

	stdout.Reset()
	assert.Equal(t, 1, a.execute([]string{"disasm", "-b", "0x01ff"}))
	assert.Equal(t, "0000: ADD\n", stdout.String())
	assert.Contains(t, stderr.String(), "invalid opcode")
}

func TestExecute_Help(t *testing.T) {
	a, stdout, _ := testApp(t)
	require.Equal(t, 0, a.execute(nil))
	out := stdout.String()
	assert.True(t, strings.Contains(out, "run") && strings.Contains(out, "serve"))
}

func TestExecute_ServeNeedsStepBound(t *testing.T) {
	a, _, stderr := testApp(t)
	body := "[api]\nmax_steps = 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(a.workDir, config.DefaultFile), []byte(body), 0o644))

	assert.Equal(t, 1, a.execute([]string{"serve", "--addr", "127.0.0.1:0"}))
	assert.Contains(t, stderr.String(), "step bound")
}
